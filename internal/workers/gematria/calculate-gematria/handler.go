// internal/workers/gematria/calculate-gematria/handler.go
package calculategematria

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"gematria-workers/internal/common/camunda"
	"gematria-workers/internal/common/errors"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/common/metrics"
	"gematria-workers/internal/corpus"
	"gematria-workers/internal/gematria"
	"gematria-workers/internal/matcher"
)

const (
	TaskType = "calculate-gematria"
)

type Handler struct {
	config     *Config
	cache      *corpus.ValueCache
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler builds the handler. cache may be nil, in which case every
// value is computed directly.
func NewHandler(config *Config, cache *corpus.ValueCache, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		cache:      cache,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewParseError(err))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// Execute values every distinct word of the input text. Systems default to
// all six.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.NewInvalidArgumentError("text", "text is required")
	}

	systems := gematria.AllSystems
	if len(input.Systems) > 0 {
		parsed, err := gematria.ParseSystems(input.Systems)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("systems", err.Error())
		}
		systems = parsed
	}

	tokens := matcher.Tokenize(input.Text, 1)
	if h.config.MaxTokens > 0 && len(tokens) > h.config.MaxTokens {
		return nil, errors.NewInvalidArgumentError("text",
			fmt.Sprintf("%d distinct words exceeds the limit of %d", len(tokens), h.config.MaxTokens))
	}

	out := &Output{
		Tokens:    make([]TokenValues, 0, len(tokens)),
		WordCount: matcher.CountWords(input.Text),
		Systems:   gematria.Names(systems),
	}
	for _, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.Tokens = append(out.Tokens, TokenValues{
			Word:   tok,
			Length: utf8.RuneCountInString(tok),
			Values: h.cache.Values(ctx, tok, systems),
		})
	}

	h.logger.Debug("values calculated", map[string]interface{}{
		"tokens":  len(out.Tokens),
		"systems": out.Systems,
	})
	return out, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}
