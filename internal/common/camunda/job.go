package camunda

import (
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"

	"price-finder/internal/common/errors"
	"price-finder/internal/common/validation"
)

// ParseJobInput validates the job variables against the registry schema for
// taskType (when validator is non-nil) and decodes them into out.
func ParseJobInput(job entities.Job, taskType string, validator *validation.Validator, out interface{}) error {
	raw := job.Variables
	if raw == "" {
		raw = "{}"
	}

	if validator != nil {
		var vars map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &vars); err != nil {
			return errors.NewInputValidationError(fmt.Sprintf("parse variables: %v", err))
		}
		if err := validator.ValidateInput(taskType, vars); err != nil {
			return err
		}
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errors.NewInputValidationError(fmt.Sprintf("parse input: %v", err))
	}
	return nil
}
