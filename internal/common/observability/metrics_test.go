package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gematria-workers/internal/common/logger"
)

func TestObservability_Records(t *testing.T) {
	obs := New("gematria-test", logger.NewTestLogger(t))
	ctx := context.Background()

	obs.RecordJobProcessed(ctx, "find-similar-words", "completed")
	obs.RecordJobDuration(ctx, "find-similar-words", 12*time.Millisecond, "completed")
	obs.RecordAnalysis(ctx, "worker", []string{"english", "jewish"}, 3*time.Millisecond, nil)
	obs.RecordAnalysis(ctx, "api", []string{"english"}, time.Millisecond, errors.New("bad input"))

	assert.NoError(t, obs.Shutdown(ctx))
}

func TestObservability_ZeroValueIsNoOp(t *testing.T) {
	var nilObs *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		nilObs.RecordJobProcessed(ctx, "x", "failed")
		nilObs.RecordAnalysis(ctx, "cli", nil, 0, nil)
		(&Observability{}).RecordJobDuration(ctx, "x", time.Second, "failed")
	})
	assert.NoError(t, nilObs.Shutdown(ctx))
}
