package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gematria-workers/internal/analyzer"
	apperrors "gematria-workers/internal/common/errors"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/common/metrics"
	"gematria-workers/internal/common/observability"
	"gematria-workers/internal/corpus"
	"gematria-workers/internal/gematria"
	"gematria-workers/internal/matcher"
	"gematria-workers/pkg/registry"
)

const (
	maxBodyBytes  = 1 << 20
	readyTimeout  = 3 * time.Second
	metricsOrigin = "api"
)

// Pinger is a readiness dependency; the database clients satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CorpusInfo describes the loaded corpus. corpus.Store satisfies it.
type CorpusInfo interface {
	Source() string
	Len() int
}

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	analyzer *analyzer.Analyzer
	corpus   CorpusInfo
	cache    *corpus.ValueCache
	defaults analyzer.Settings
	checks   map[string]Pinger
	registry *registry.ActivityRegistry
	obs      *observability.Observability
	logger   logger.Logger
}

type Options struct {
	Analyzer *analyzer.Analyzer
	Corpus   CorpusInfo
	Cache    *corpus.ValueCache
	Defaults analyzer.Settings
	Checks   map[string]Pinger
	Registry *registry.ActivityRegistry
	Obs      *observability.Observability
	Logger   logger.Logger
}

func NewHandler(opts Options) *Handler {
	return &Handler{
		analyzer: opts.Analyzer,
		corpus:   opts.Corpus,
		cache:    opts.Cache,
		defaults: opts.Defaults,
		checks:   opts.Checks,
		registry: opts.Registry,
		obs:      opts.Obs,
		logger:   opts.Logger,
	}
}

type ValuesRequest struct {
	Text    string   `json:"text"`
	Systems []string `json:"systems,omitempty"`
}

type TokenValues struct {
	Word   string               `json:"word"`
	Values gematria.ValueVector `json:"values"`
}

type ValuesResponse struct {
	Systems []string      `json:"systems"`
	Tokens  []TokenValues `json:"tokens"`
}

type AnalyzeRequest struct {
	Text       string   `json:"text"`
	Systems    []string `json:"systems,omitempty"`
	MinLength  *int     `json:"minLength,omitempty"`
	Tolerance  *int     `json:"tolerance,omitempty"`
	MaxResults *int     `json:"maxResults,omitempty"`
	Ranking    string   `json:"ranking,omitempty"`
}

type AnalyzeResponse struct {
	AnalysisID string `json:"analysisId"`
	*analyzer.Result
}

type errorBody struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Details string              `json:"details,omitempty"`
}

// HandleHealth handles GET /health requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady pings every dependency and reports 503 if any fails.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	sendJSON(w, status, map[string]interface{}{"status": state, "checks": checks})
}

// HandleCorpus handles GET /corpus requests.
func (h *Handler) HandleCorpus(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"source": h.corpus.Source(),
		"size":   h.corpus.Len(),
	})
}

// HandleActivities handles GET /activities requests.
func (h *Handler) HandleActivities(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		sendJSON(w, http.StatusOK, &registry.ActivityRegistry{Activities: []registry.Activity{}})
		return
	}
	sendJSON(w, http.StatusOK, h.registry)
}

// HandleValues handles POST /values requests.
func (h *Handler) HandleValues(w http.ResponseWriter, r *http.Request) {
	var req ValuesRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		sendError(w, apperrors.NewInvalidArgumentError("text", "text is required"))
		return
	}

	systems := gematria.AllSystems
	if len(req.Systems) > 0 {
		parsed, err := gematria.ParseSystems(req.Systems)
		if err != nil {
			sendError(w, apperrors.NewInvalidArgumentError("systems", err.Error()))
			return
		}
		systems = parsed
	}

	tokens := matcher.Tokenize(req.Text, 1)
	resp := ValuesResponse{
		Systems: gematria.Names(systems),
		Tokens:  make([]TokenValues, 0, len(tokens)),
	}
	for _, tok := range tokens {
		resp.Tokens = append(resp.Tokens, TokenValues{Word: tok, Values: h.cache.Values(r.Context(), tok, systems)})
	}
	sendJSON(w, http.StatusOK, resp)
}

// HandleAnalyze handles POST /analyze requests.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		sendError(w, apperrors.NewInvalidArgumentError("text", "please enter some text to analyze"))
		return
	}

	settings, err := h.settingsFor(&req)
	if err != nil {
		sendError(w, err)
		return
	}

	start := time.Now()
	result, err := h.analyzer.Analyze(r.Context(), req.Text, settings)
	h.obs.RecordAnalysis(r.Context(), metricsOrigin, gematria.Names(settings.Systems), time.Since(start), err)
	if err != nil {
		metrics.ObserveAnalysis(metricsOrigin, 0, 0, err)
		sendError(w, err)
		return
	}
	metrics.ObserveAnalysis(metricsOrigin, len(result.Tokens), result.MatchCount, nil)

	sendJSON(w, http.StatusOK, AnalyzeResponse{AnalysisID: uuid.New().String(), Result: result})
}

// HandleGroup handles GET /groups/{word}: the last analysis' group for word.
func (h *Handler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	word := mux.Vars(r)["word"]
	group, ok := h.analyzer.GetGroup(word)
	if !ok {
		sendError(w, apperrors.NewMatchNotFoundError(word, ""))
		return
	}
	sendJSON(w, http.StatusOK, group)
}

// HandleCompare handles GET /compare/{input}/{word}.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cmp, err := h.analyzer.Compare(vars["input"], vars["word"])
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, cmp)
}

func (h *Handler) settingsFor(req *AnalyzeRequest) (analyzer.Settings, error) {
	s := h.defaults
	if len(req.Systems) > 0 {
		systems, err := gematria.ParseSystems(req.Systems)
		if err != nil {
			return s, apperrors.NewInvalidArgumentError("systems", err.Error())
		}
		s.Systems = systems
	}
	if req.MinLength != nil {
		s.MinLength = *req.MinLength
	}
	if req.Tolerance != nil {
		s.Tolerance = *req.Tolerance
	}
	if req.MaxResults != nil {
		s.MaxResults = *req.MaxResults
	}
	if req.Ranking != "" {
		s.Ranking = matcher.Ranking(req.Ranking)
	}
	return s, nil
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		sendError(w, apperrors.NewInvalidArgumentError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidArgument, apperrors.ErrCodeParseError, apperrors.ErrCodeSchemaViolation:
		return http.StatusBadRequest
	case apperrors.ErrCodeMatchNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func sendError(w http.ResponseWriter, err error) {
	stdErr := apperrors.AsStandardError(err)
	sendJSON(w, statusFor(stdErr.Code), map[string]errorBody{
		"error": {Code: stdErr.Code, Message: stdErr.Message, Details: stdErr.Details},
	})
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
