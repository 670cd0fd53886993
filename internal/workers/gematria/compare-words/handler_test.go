// internal/workers/gematria/compare-words/handler_test.go
package comparewords

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gematria-workers/internal/analyzer"
	"gematria-workers/internal/common/errors"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/gematria"
)

func createTestHandler(t *testing.T) *Handler {
	cfg := &Config{Timeout: time.Second, Defaults: analyzer.DefaultSettings()}
	return NewHandler(cfg, logger.NewZapAdapter(zaptest.NewLogger(t)))
}

func intPtr(i int) *int { return &i }

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "anagrams agree everywhere",
			input: &Input{InputWord: "Heart", Word: "earth"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.True(t, output.Exact)
				assert.Equal(t, 3, output.SimilarityScore)
				assert.Zero(t, output.TotalDifference)
				assert.Equal(t, []string{"english", "reduced", "reverse"}, output.CloseSystems)
				require.Len(t, output.Rows, 3)
				assert.Equal(t, analyzer.Exact, output.Rows[0].Closeness)
			},
		},
		{
			name:  "ordinal only",
			input: &Input{InputWord: "life", Word: "fate", Systems: []string{"english", "jewish"}, Tolerance: intPtr(0)},
			validateOutput: func(t *testing.T, output *Output) {
				assert.False(t, output.Exact)
				assert.Equal(t, 1, output.SimilarityScore)
				assert.Equal(t, 72, output.TotalDifference)
				assert.Equal(t, []string{"english"}, output.CloseSystems)
				require.Len(t, output.Rows, 2)
				assert.Equal(t, gematria.ClassicalWeighted, output.Rows[1].System)
				assert.Equal(t, 40, output.Rows[1].InputValue)
				assert.Equal(t, 112, output.Rows[1].Value)
				assert.Equal(t, analyzer.Far, output.Rows[1].Closeness)
			},
		},
		{
			name:  "nothing close",
			input: &Input{InputWord: "light", Word: "dark", Systems: []string{"english"}},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Zero(t, output.SimilarityScore)
				assert.Empty(t, output.CloseSystems)
				assert.Equal(t, 22, output.TotalDifference)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := createTestHandler(t).Execute(context.Background(), tt.input)
			require.NoError(t, err)
			tt.validateOutput(t, output)
		})
	}
}

func TestOutput_FlattensComparison(t *testing.T) {
	output, err := createTestHandler(t).Execute(context.Background(), &Input{InputWord: "soul", Word: "water", Systems: []string{"english"}})
	require.NoError(t, err)

	data, err := json.Marshal(output)
	require.NoError(t, err)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &vars))
	assert.Equal(t, "soul", vars["inputWord"])
	assert.Equal(t, "water", vars["word"])
	assert.Equal(t, true, vars["exact"])
	assert.Contains(t, vars, "closeSystems")
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
		field string
	}{
		{"missing input word", &Input{Word: "earth"}, "inputWord"},
		{"missing word", &Input{InputWord: "heart", Word: " "}, "word"},
		{"unknown system", &Input{InputWord: "heart", Word: "earth", Systems: []string{"greek"}}, "systems"},
		{"negative tolerance", &Input{InputWord: "heart", Word: "earth", Tolerance: intPtr(-2)}, "tolerance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := createTestHandler(t).Execute(context.Background(), tt.input)
			require.Error(t, err)
			stdErr := errors.AsStandardError(err)
			assert.Equal(t, errors.ErrCodeInvalidArgument, stdErr.Code)
			assert.Equal(t, tt.field, stdErr.Metadata["field"])
		})
	}
}
