package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchemaID = "http://example.com/schema.json"

const testSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["steps"],
  "properties": {
    "steps": {"type": "array", "items": {"type": "string"}}
  }
}`

func mustParse(t *testing.T, s string) JSONDocument {
	t.Helper()
	doc, err := ParseJSON([]byte(s))
	require.NoError(t, err)
	return doc
}

func TestNewSanthoshCompiler(t *testing.T) {
	t.Parallel()
	c := NewSanthoshCompiler()
	assert.NotNil(t, c)
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseJSON([]byte(`{"a": 1}`))
		require.NoError(t, err)
		assert.IsType(t, map[string]interface{}{}, doc)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, err := ParseJSON([]byte(`{"a":`))
		require.Error(t, err)
	})
}

func TestSanthoshCompiler_Compile(t *testing.T) {
	t.Parallel()

	t.Run("successful compile", func(t *testing.T) {
		t.Parallel()
		c := NewSanthoshCompiler()
		require.NoError(t, c.AddSchema(testSchemaID, mustParse(t, testSchema)))
		v, err := c.Compile(testSchemaID)
		require.NoError(t, err)
		assert.NotNil(t, v)
	})

	t.Run("compile missing schema", func(t *testing.T) {
		t.Parallel()
		c := NewSanthoshCompiler()
		v, err := c.Compile("http://example.com/missing.json")
		require.Error(t, err)
		assert.Nil(t, v)
	})

	t.Run("compile invalid schema", func(t *testing.T) {
		t.Parallel()
		c := NewSanthoshCompiler()
		id := "http://example.com/invalid.json"
		data := map[string]interface{}{
			"type": 123, // type must be string or array
		}

		_ = c.AddSchema(id, data)
		v, err := c.Compile(id)
		require.Error(t, err)
		assert.Nil(t, v)
	})
}

func TestSanthoshValidator_Validate(t *testing.T) {
	t.Parallel()
	c := NewSanthoshCompiler()
	require.NoError(t, c.AddSchema(testSchemaID, mustParse(t, testSchema)))
	v, err := c.Compile(testSchemaID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "valid", doc: `{"steps": ["a", "b"]}`},
		{name: "empty steps", doc: `{"steps": []}`},
		{name: "missing steps", doc: `{}`, wantErr: true},
		{name: "wrong item type", doc: `{"steps": [1]}`, wantErr: true},
		{name: "not an object", doc: `[]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(mustParse(t, tt.doc))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
