package camunda

import (
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-finder/internal/common/errors"
	"price-finder/internal/common/validation"
	"price-finder/pkg/registry"
)

func createMockJob(key int64, variables string) entities.Job {
	return entities.Job{
		ActivatedJob: &pb.ActivatedJob{
			Key:       key,
			Type:      "fetch-prices",
			Variables: variables,
			Retries:   3,
		},
	}
}

func testValidator(t *testing.T) *validation.Validator {
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{{
		ID:       "fetch-prices",
		TaskType: "fetch-prices",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"query"},
			"properties": map[string]interface{}{
				"query": map[string]interface{}{"type": "string", "minLength": 1},
			},
		},
	}}}
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)
	return v
}

type input struct {
	Query string `json:"query"`
}

func TestParseJobInput(t *testing.T) {
	var in input
	err := ParseJobInput(createMockJob(1, `{"query":"Sony WH-1000XM5"}`), "fetch-prices", testValidator(t), &in)

	require.NoError(t, err)
	assert.Equal(t, "Sony WH-1000XM5", in.Query)
}

func TestParseJobInput_SchemaViolation(t *testing.T) {
	var in input
	err := ParseJobInput(createMockJob(1, `{"query":""}`), "fetch-prices", testValidator(t), &in)

	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))
}

func TestParseJobInput_NoValidator(t *testing.T) {
	var in input
	require.NoError(t, ParseJobInput(createMockJob(1, ""), "fetch-prices", nil, &in))
	assert.Empty(t, in.Query)

	err := ParseJobInput(createMockJob(1, `{"query":`), "fetch-prices", nil, &in)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))
}
