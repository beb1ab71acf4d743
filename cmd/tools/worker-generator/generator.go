package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"price-finder/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Description  string
	TimeoutSecs  int
	InputFields  []Field
	OutputFields []Field
}

// Field is one struct field derived from a JSON schema property.
type Field struct {
	Name    string
	Type    string
	JSONTag string
}

// initialisms are upper-cased when they end a field name.
var initialisms = []string{"Id", "Url", "Api"}

// goFieldName turns a camelCase JSON property into an exported Go name.
func goFieldName(prop string) string {
	if prop == "" {
		return prop
	}
	name := strings.ToUpper(prop[:1]) + prop[1:]
	for _, in := range initialisms {
		if strings.HasSuffix(name, in) {
			return strings.TrimSuffix(name, in) + strings.ToUpper(in)
		}
	}
	return name
}

// goTypeFromJSONType maps JSON schema types to Go types
func goTypeFromJSONType(jsonType interface{}) string {
	switch jt := jsonType.(type) {
	case string:
		switch jt {
		case "string":
			return "string"
		case "integer":
			return "int"
		case "number":
			return "float64"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		}
	case []interface{}:
		// ["number", "null"] and similar nullable unions
		var types []string
		for _, t := range jt {
			if s, ok := t.(string); ok && s != "null" {
				types = append(types, s)
			}
		}
		if len(types) == 1 {
			base := goTypeFromJSONType(types[0])
			if strings.HasPrefix(base, "[]") || strings.HasPrefix(base, "map[") || base == "interface{}" {
				return base
			}
			return "*" + base
		}
	}
	return "interface{}"
}

// fieldsFromSchema returns the schema's properties as fields sorted by JSON name.
func fieldsFromSchema(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		fields = append(fields, Field{
			Name:    goFieldName(name),
			Type:    goTypeFromJSONType(details["type"]),
			JSONTag: fmt.Sprintf("`json:\"%s\"`", name),
		})
	}
	return fields
}

// NewWorkerData prepares template data for one registry activity.
func NewWorkerData(act *registry.Activity) (WorkerData, error) {
	secs := 30
	if act.Timeout != "" {
		d, err := parseTimeout(act.Timeout)
		if err != nil {
			return WorkerData{}, err
		}
		secs = d
	}
	return WorkerData{
		Name:         act.DisplayName,
		PackageName:  strings.ReplaceAll(act.ID, "-", ""),
		TaskType:     act.TaskType,
		Description:  act.Description,
		TimeoutSecs:  secs,
		InputFields:  fieldsFromSchema(act.InputSchema),
		OutputFields: fieldsFromSchema(act.OutputSchema),
	}, nil
}

// Generate writes the worker scaffold under outputDir/<category>/<id> and
// returns the written paths. Existing files are kept unless force is set.
func Generate(act *registry.Activity, outputDir string, force bool) ([]string, error) {
	data, err := NewWorkerData(act)
	if err != nil {
		return nil, err
	}

	workerDir := filepath.Join(outputDir, strings.ToLower(act.Category), act.ID)
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		src, err := render(name, data)
		if err != nil {
			return written, err
		}

		path := filepath.Join(workerDir, name)
		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%s already exists (use -force to overwrite)", path)
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// render executes one template and gofmts the result.
func render(name string, data WorkerData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(templates[name])
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return src, nil
}
