// internal/workers/gematria/sync-corpus/handler.go
package synccorpus

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"gematria-workers/internal/common/camunda"
	"gematria-workers/internal/common/errors"
	apphttp "gematria-workers/internal/common/http"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/common/metrics"
	"gematria-workers/internal/corpus"
	"gematria-workers/internal/matcher"
)

const (
	TaskType = "sync-corpus"
)

// Upserter is satisfied by corpus.PostgresRepository.
type Upserter interface {
	Upsert(ctx context.Context, entries []matcher.CorpusEntry) (int, error)
}

// Indexer is satisfied by corpus.ElasticsearchIndex.
type Indexer interface {
	Index(ctx context.Context, entries []matcher.CorpusEntry) (int, error)
}

type Handler struct {
	config     *Config
	repo       Upserter
	index      Indexer
	http       *apphttp.Client
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler builds the handler. A nil repo or index disables that target.
func NewHandler(config *Config, repo Upserter, index Indexer, httpClient *apphttp.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		repo:       repo,
		index:      index,
		http:       httpClient,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	targets, err := h.resolveTargets(input.Targets)
	if err != nil {
		return nil, err
	}

	source, entries, err := h.entries(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.NewCorpusEmptyError(source)
	}
	if h.config.MaxWords > 0 && len(entries) > h.config.MaxWords {
		return nil, errors.NewInvalidArgumentError("words",
			fmt.Sprintf("%d words exceeds the limit of %d", len(entries), h.config.MaxWords))
	}

	out := &Output{
		Source:     source,
		EntryCount: len(entries),
		Targets:    targets,
	}
	for _, target := range targets {
		switch target {
		case TargetPostgres:
			if out.Upserted, err = h.repo.Upsert(ctx, entries); err != nil {
				return nil, err
			}
		case TargetElasticsearch:
			if out.Indexed, err = h.index.Index(ctx, entries); err != nil {
				return nil, err
			}
		}
	}
	out.SyncedAt = time.Now().UTC().Format(time.RFC3339)

	h.logger.Info("corpus synced", map[string]interface{}{
		"source":   source,
		"entries":  out.EntryCount,
		"upserted": out.Upserted,
		"indexed":  out.Indexed,
	})
	return out, nil
}

func (h *Handler) entries(ctx context.Context, input *Input) (string, []matcher.CorpusEntry, error) {
	switch {
	case len(input.Words) > 0:
		return "job", corpus.Build(input.Words), nil
	case input.URL != "":
		if h.http == nil {
			return "", nil, errors.NewInvalidArgumentError("url", "remote word lists are not enabled")
		}
		src := corpus.RemoteSource{URL: input.URL, Client: h.http}
		entries, err := src.Load(ctx)
		return src.Name(), entries, err
	default:
		entries, err := corpus.Builtin{}.Load(ctx)
		return corpus.Builtin{}.Name(), entries, err
	}
}

func (h *Handler) resolveTargets(requested []string) ([]string, error) {
	available := make([]string, 0, 2)
	if h.repo != nil {
		available = append(available, TargetPostgres)
	}
	if h.index != nil {
		available = append(available, TargetElasticsearch)
	}

	if len(requested) == 0 {
		if len(available) == 0 {
			return nil, errors.NewInvalidArgumentError("targets", "no corpus store is configured")
		}
		return available, nil
	}

	out := make([]string, 0, len(requested))
	for _, t := range requested {
		if !slices.Contains(available, t) {
			return nil, errors.NewInvalidArgumentError("targets", fmt.Sprintf("target %q is not configured", t))
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}
