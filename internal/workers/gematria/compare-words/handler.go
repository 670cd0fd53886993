// internal/workers/gematria/compare-words/handler.go
package comparewords

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"gematria-workers/internal/analyzer"
	"gematria-workers/internal/common/camunda"
	"gematria-workers/internal/common/errors"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/common/metrics"
	"gematria-workers/internal/gematria"
)

const (
	TaskType = "compare-words"
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	systems := h.config.Defaults.Systems
	if len(input.Systems) > 0 {
		parsed, err := gematria.ParseSystems(input.Systems)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("systems", err.Error())
		}
		systems = parsed
	}
	tolerance := h.config.Defaults.Tolerance
	if input.Tolerance != nil {
		tolerance = *input.Tolerance
	}

	cmp, err := analyzer.CompareWords(input.InputWord, input.Word, systems, tolerance)
	if err != nil {
		return nil, err
	}

	out := &Output{Comparison: *cmp, CloseSystems: []string{}}
	for _, row := range cmp.Rows {
		if row.Difference <= tolerance {
			out.CloseSystems = append(out.CloseSystems, row.System.String())
		}
	}

	h.logger.Debug("words compared", map[string]interface{}{
		"inputWord":       cmp.InputWord,
		"word":            cmp.Word,
		"similarityScore": cmp.SimilarityScore,
		"exact":           cmp.Exact,
	})
	return out, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}
