package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"price-finder/internal/common/validation"
	"price-finder/pkg/registry"
)

type addOptions struct {
	ID               string
	DisplayName      string
	Description      string
	Category         string
	TaskType         string
	Version          string
	Status           string
	Timeout          string
	Retries          int
	InputSchemaFile  string
	OutputSchemaFile string
}

func addActivity(path string, opts addOptions) error {
	if opts.ID == "" || opts.DisplayName == "" || opts.Description == "" || opts.Category == "" {
		return fmt.Errorf("id, displayName, description, and category are required for add")
	}
	if opts.TaskType == "" {
		opts.TaskType = opts.ID
	}

	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0", Activities: []registry.Activity{}}
	}

	input, err := readSchema(opts.InputSchemaFile)
	if err != nil {
		return err
	}
	output, err := readSchema(opts.OutputSchemaFile)
	if err != nil {
		return err
	}

	activity := registry.Activity{
		ID:                   opts.ID,
		DisplayName:          opts.DisplayName,
		Description:          opts.Description,
		Category:             opts.Category,
		Version:              opts.Version,
		TaskType:             opts.TaskType,
		ImplementationStatus: opts.Status,
		InputSchema:          input,
		OutputSchema:         output,
		ErrorCodes:           []string{},
		Timeout:              opts.Timeout,
		Retries:              opts.Retries,
		Workflows:            []string{},
		Tags:                 []string{},
	}
	if err := reg.Add(activity); err != nil {
		return err
	}
	if err := checkRegistry(reg); err != nil {
		return err
	}
	return reg.Save(path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	a, ok := reg.FindByID(id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "taskType":
		a.TaskType = value
	case "timeout":
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	case "errorCodes":
		a.ErrorCodes = splitList(value)
	case "tags":
		a.Tags = splitList(value)
	case "inputSchema":
		if a.InputSchema, err = readSchema(value); err != nil {
			return err
		}
	case "outputSchema":
		if a.OutputSchema, err = readSchema(value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := checkRegistry(reg); err != nil {
		return err
	}
	return reg.Save(path)
}

// validateRegistry returns the number of activities in a valid registry.
func validateRegistry(path string) (int, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load registry: %w", err)
	}
	if err := checkRegistry(reg); err != nil {
		return 0, err
	}
	return len(reg.Activities), nil
}

// checkRegistry runs the structural checks and compiles every input schema.
func checkRegistry(reg *registry.ActivityRegistry) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	if _, err := validation.NewValidator(reg); err != nil {
		return err
	}
	return nil
}

func listActivities(w io.Writer, path, category string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activities := make([]registry.Activity, 0, len(reg.Activities))
	for _, a := range reg.Activities {
		if category == "" || a.Category == category {
			activities = append(activities, a)
		}
	}
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Category != activities[j].Category {
			return activities[i].Category < activities[j].Category
		}
		return activities[i].ID < activities[j].ID
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK TYPE\tCATEGORY\tSTATUS\tTIMEOUT\tRETRIES")
	for _, a := range activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			a.ID, a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries)
	}
	return tw.Flush()
}

func readSchema(path string) (map[string]interface{}, error) {
	if path == "" {
		return map[string]interface{}{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return schema, nil
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
