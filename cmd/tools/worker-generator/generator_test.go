package main

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-finder/pkg/registry"
)

func TestGoFieldName(t *testing.T) {
	tests := map[string]string{
		"query":     "Query",
		"sessionId": "SessionID",
		"imageUrl":  "ImageURL",
		"pageToken": "PageToken",
	}
	for in, want := range tests {
		assert.Equal(t, want, goFieldName(in), in)
	}
}

func TestGoTypeFromJSONType(t *testing.T) {
	assert.Equal(t, "string", goTypeFromJSONType("string"))
	assert.Equal(t, "int", goTypeFromJSONType("integer"))
	assert.Equal(t, "*float64", goTypeFromJSONType([]interface{}{"number", "null"}))
	assert.Equal(t, "[]interface{}", goTypeFromJSONType([]interface{}{"array", "null"}))
	assert.Equal(t, "interface{}", goTypeFromJSONType([]interface{}{"string", "number"}))
	assert.Equal(t, "interface{}", goTypeFromJSONType(nil))
}

func TestParseTimeout(t *testing.T) {
	secs, err := parseTimeout("180s")
	require.NoError(t, err)
	assert.Equal(t, 180, secs)

	secs, err = parseTimeout("1500ms")
	require.NoError(t, err)
	assert.Equal(t, 2, secs)

	_, err = parseTimeout("soon")
	assert.Error(t, err)
}

func TestGenerate_ShippedActivities(t *testing.T) {
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	for _, act := range reg.Activities {
		act := act
		t.Run(act.ID, func(t *testing.T) {
			dir := t.TempDir()

			files, err := Generate(&act, dir, false)
			require.NoError(t, err)
			require.Len(t, files, len(templates))

			fset := token.NewFileSet()
			for _, f := range files {
				parsed, err := parser.ParseFile(fset, f, nil, 0)
				require.NoError(t, err, f)
				assert.Equal(t, strings.ReplaceAll(act.ID, "-", ""), parsed.Name.Name)
			}
			assert.DirExists(t, filepath.Join(dir, act.Category, act.ID))
		})
	}
}

func TestGenerate_ModelsFromSchema(t *testing.T) {
	act := &registry.Activity{
		ID:       "lookup-sku",
		TaskType: "lookup-sku",
		Category: "shopping",
		Timeout:  "10s",
		InputSchema: map[string]interface{}{
			"properties": map[string]interface{}{
				"sku":       map[string]interface{}{"type": "string"},
				"sessionId": map[string]interface{}{"type": "string"},
				"price":     map[string]interface{}{"type": []interface{}{"number", "null"}},
			},
		},
	}
	dir := t.TempDir()

	_, err := Generate(act, dir, false)
	require.NoError(t, err)

	models, err := os.ReadFile(filepath.Join(dir, "shopping", "lookup-sku", "models.go"))
	require.NoError(t, err)
	src := string(models)
	assert.Contains(t, src, "SessionID string")
	assert.Contains(t, src, "Price     *float64")
	assert.Less(t, strings.Index(src, "Price"), strings.Index(src, "SessionID"))

	config, err := os.ReadFile(filepath.Join(dir, "shopping", "lookup-sku", "config.go"))
	require.NoError(t, err)
	assert.Contains(t, string(config), "10 * time.Second")

	_, err = Generate(act, dir, false)
	assert.ErrorContains(t, err, "already exists")

	_, err = Generate(act, dir, true)
	assert.NoError(t, err)
}
