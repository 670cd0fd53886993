// internal/workers/gematria/find-similar-words/handler.go
package findsimilarwords

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gematria-workers/internal/analyzer"
	"gematria-workers/internal/common/camunda"
	"gematria-workers/internal/common/errors"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/common/metrics"
	"gematria-workers/internal/common/observability"
	"gematria-workers/internal/common/validation"
	"gematria-workers/internal/gematria"
	"gematria-workers/internal/matcher"
)

const (
	TaskType = "find-similar-words"

	resultKeyPrefix = "gematria:analysis:"
	metricsOrigin   = "worker"
)

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config     *Config
	analyzer   *analyzer.Analyzer
	redis      redis.Cmdable
	obs        *observability.Observability
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler builds the handler. redis and obs may be nil.
func NewHandler(config *Config, a *analyzer.Analyzer, rdb redis.Cmdable, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		analyzer:   a,
		redis:      rdb,
		obs:        obs,
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
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
}

// Execute validates the input, then serves the analysis from the result
// cache or runs it against the corpus.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := schema.Validate(input)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, errors.NewSchemaViolationError(result.GetErrorMessages())
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, errors.NewInvalidArgumentError("text", "text to analyze is blank")
	}

	settings, err := h.settingsFor(input)
	if err != nil {
		return nil, err
	}

	key := resultKey(input.Text, settings)
	if cached, ok := h.lookup(ctx, key); ok {
		cached.AnalysisID = uuid.New().String()
		cached.Cached = true
		metrics.AnalysesTotal.WithLabelValues(metricsOrigin, "cached").Inc()
		return cached, nil
	}

	start := time.Now()
	res, err := h.analyzer.Analyze(ctx, input.Text, settings)
	h.obs.RecordAnalysis(ctx, metricsOrigin, gematria.Names(settings.Systems), time.Since(start), err)
	if err != nil {
		metrics.ObserveAnalysis(metricsOrigin, 0, 0, err)
		return nil, err
	}
	metrics.ObserveAnalysis(metricsOrigin, len(res.Tokens), res.MatchCount, nil)

	output := &Output{
		AnalysisID: uuid.New().String(),
		WordCount:  res.WordCount,
		TokenCount: len(res.Tokens),
		MatchCount: res.MatchCount,
		Systems:    gematria.Names(settings.Systems),
		Groups:     res.Groups,
	}
	h.store(ctx, key, output)

	h.logger.Info("similar words found", map[string]interface{}{
		"analysisId": output.AnalysisID,
		"tokens":     output.TokenCount,
		"matchCount": output.MatchCount,
	})
	return output, nil
}

func (h *Handler) settingsFor(input *Input) (analyzer.Settings, error) {
	s := h.config.Defaults
	if len(input.Systems) > 0 {
		systems, err := gematria.ParseSystems(input.Systems)
		if err != nil {
			return s, errors.NewInvalidArgumentError("systems", err.Error())
		}
		s.Systems = systems
	}
	if input.MinLength != nil {
		s.MinLength = *input.MinLength
	}
	if input.Tolerance != nil {
		s.Tolerance = *input.Tolerance
	}
	if input.MaxResults != nil {
		s.MaxResults = *input.MaxResults
	}
	if input.Ranking != "" {
		s.Ranking = matcher.Ranking(input.Ranking)
	}
	return s, s.Validate()
}

// resultKey hashes the text together with every setting that changes the
// outcome.
func resultKey(text string, s analyzer.Settings) string {
	payload, _ := json.Marshal(struct {
		Text     string            `json:"text"`
		Settings analyzer.Settings `json:"settings"`
	}{text, s})
	sum := sha256.Sum256(payload)
	return resultKeyPrefix + hex.EncodeToString(sum[:])
}

func (h *Handler) lookup(ctx context.Context, key string) (*Output, bool) {
	if h.redis == nil || h.config.CacheTTL <= 0 {
		return nil, false
	}
	raw, err := h.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			h.logger.Warn("result cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return nil, false
	}
	var out Output
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return &out, true
}

func (h *Handler) store(ctx context.Context, key string, output *Output) {
	if h.redis == nil || h.config.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(output)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, key, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("result cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}
