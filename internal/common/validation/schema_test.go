package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text": {"type": "string", "minLength": 1},
		"tolerance": {"type": "integer", "minimum": 0},
		"systems": {"type": "array", "items": {"type": "string"}}
	}
}`

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(testSchema)

	tests := []struct {
		name      string
		doc       map[string]interface{}
		valid     bool
		badFields []string
	}{
		{
			name:  "valid",
			doc:   map[string]interface{}{"text": "light and dark", "tolerance": 2, "systems": []interface{}{"english"}},
			valid: true,
		},
		{
			name:      "missing text",
			doc:       map[string]interface{}{"tolerance": 2},
			badFields: []string{"(root)"},
		},
		{
			name:      "negative tolerance and wrong systems type",
			doc:       map[string]interface{}{"text": "x", "tolerance": -1, "systems": "english"},
			badFields: []string{"systems", "tolerance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			for _, f := range tt.badFields {
				assert.True(t, result.HasErrors(f), "expected error on %s, got %v", f, result.GetErrorMessages())
			}
		})
	}
}

func TestSchema_ValidateJSON(t *testing.T) {
	s := MustCompile(testSchema)

	result, err := s.ValidateJSON(`{"text": ""}`)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("text"))

	_, err = s.ValidateJSON(`{not json`)
	assert.Error(t, err)
}

func TestCompile_Malformed(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`{`) })
}
