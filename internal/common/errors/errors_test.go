package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidArgument_IsMatchesByCode(t *testing.T) {
	err := NewInvalidArgumentError("systems", "at least one numeral system is required")

	assert.True(t, IsInvalidArgument(err))
	assert.True(t, stderrors.Is(err, ErrInvalidArgument))

	wrapped := fmt.Errorf("analyze: %w", err)
	assert.True(t, IsInvalidArgument(wrapped))

	assert.False(t, IsInvalidArgument(NewCorpusEmptyError("builtin")))
	assert.False(t, IsInvalidArgument(stderrors.New("plain")))
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
	assert.Equal(t, "systems", err.Metadata["field"])
}

func TestAsStandardError(t *testing.T) {
	original := NewCorpusLoadFailedError("postgres", stderrors.New("connection refused"))
	assert.Same(t, original, AsStandardError(fmt.Errorf("wrap: %w", original)))

	internal := AsStandardError(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, internal.Code)
	assert.Equal(t, "boom", internal.Details)
	assert.False(t, internal.Retryable)
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeCorpusLoadFailed, 3},
		{ErrCodeCorpusWriteFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeCacheUnavailable, 1},
		{ErrCodeInvalidArgument, 0},
		{ErrCodeSchemaViolation, 0},
		{ErrCodeMatchNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetRetryCount(tt.code))
			assert.Equal(t, tt.expected > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable error keeps retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewCorpusWriteFailedError("elasticsearch", stderrors.New("503")))
		assert.Equal(t, "CORPUS_WRITE_FAILED", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.True(t, bpmn.Retryable)

		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "CORPUS_WRITE_FAILED", vars["errorCode"])
		assert.Equal(t, "CORPUS_WRITE_FAILED", vars["originalErrorCode"])
		assert.NotEmpty(t, vars["timestamp"])
	})

	t.Run("argument error is thrown without retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInvalidArgumentError("tolerance", "must be >= 0"))
		assert.Equal(t, "INVALID_ARGUMENT", bpmn.Code)
		assert.Zero(t, bpmn.Retries)
		assert.False(t, bpmn.Retryable)
	})

	t.Run("unknown code passes through", func(t *testing.T) {
		bpmn := ConvertToBPMNError(&StandardError{Code: "SOMETHING_NEW", Message: "x"})
		require.NotNil(t, bpmn)
		assert.Equal(t, "SOMETHING_NEW", bpmn.Code)
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CORPUS", GetErrorCategory(ErrCodeCorpusLoadFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidArgument))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseError))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
