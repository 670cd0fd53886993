// internal/analyzer/analyzer.go
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gematria-workers/internal/common/config"
	apperrors "gematria-workers/internal/common/errors"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/gematria"
	"gematria-workers/internal/matcher"
)

// CorpusProvider supplies the reference words. corpus.Store satisfies it.
type CorpusProvider interface {
	Entries() []matcher.CorpusEntry
}

// Settings are the user-tunable analysis parameters.
type Settings struct {
	Systems     []gematria.NumeralSystem `json:"systems"`
	MinLength   int                      `json:"minLength"`
	Tolerance   int                      `json:"tolerance"`
	MaxResults  int                      `json:"maxResults"`
	Ranking     matcher.Ranking          `json:"ranking,omitempty"`
	Parallelism int                      `json:"-"`
}

// DefaultSettings returns the settings used when a caller supplies none.
func DefaultSettings() Settings {
	return Settings{
		Systems:    []gematria.NumeralSystem{gematria.Ordinal, gematria.Reduced, gematria.ReverseOrdinal},
		MinLength:  3,
		Tolerance:  2,
		MaxResults: 10,
		Ranking:    matcher.RankByMatchCount,
	}
}

// Validate checks s the same way Analyze does.
func (s Settings) Validate() error {
	if len(s.Systems) == 0 {
		return apperrors.NewInvalidArgumentError("systems", "at least one numeral system is required")
	}
	if s.MinLength < 1 {
		return apperrors.NewInvalidArgumentError("minLength", fmt.Sprintf("must be >= 1, got %d", s.MinLength))
	}
	if s.Tolerance < 0 {
		return apperrors.NewInvalidArgumentError("tolerance", fmt.Sprintf("must be >= 0, got %d", s.Tolerance))
	}
	if s.MaxResults < 0 {
		return apperrors.NewInvalidArgumentError("maxResults", fmt.Sprintf("must be >= 0, got %d", s.MaxResults))
	}
	if !s.Ranking.Valid() {
		return apperrors.NewInvalidArgumentError("ranking", fmt.Sprintf("unknown ranking %q", s.Ranking))
	}
	return nil
}

// Result is one completed analysis.
type Result struct {
	Text       string               `json:"-"`
	Settings   Settings             `json:"settings"`
	Tokens     []matcher.InputToken `json:"tokens"`
	WordCount  int                  `json:"wordCount"`
	MatchCount int                  `json:"matchCount"`
	Groups     []matcher.MatchGroup `json:"groups"`
	Duration   time.Duration        `json:"-"`
}

// NonEmptyGroups returns the groups that hold at least one candidate.
func (r *Result) NonEmptyGroups() []matcher.MatchGroup {
	out := make([]matcher.MatchGroup, 0, len(r.Groups))
	for _, g := range r.Groups {
		if len(g.Matches) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// Analyzer runs analyses against a fixed corpus and remembers the last
// result so groups and comparisons can be looked up afterwards.
type Analyzer struct {
	corpus CorpusProvider
	log    logger.Logger

	mu       sync.RWMutex
	settings Settings
	last     *Result
}

func New(corpus CorpusProvider, log logger.Logger) *Analyzer {
	return &Analyzer{
		corpus:   corpus,
		log:      log,
		settings: DefaultSettings(),
	}
}

// Settings returns the settings of the most recent successful analysis, or
// the defaults.
func (a *Analyzer) Settings() Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// Analyze tokenizes text, values every token and matches it against the
// corpus. Text without words yields an empty result, not an error. On
// success the result replaces the previous one.
func (a *Analyzer) Analyze(ctx context.Context, text string, settings Settings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.Systems = gematria.Unique(settings.Systems)

	start := time.Now()
	tokens := matcher.NewInputTokens(matcher.Tokenize(text, settings.MinLength), settings.Systems)

	groups, err := matcher.FindMatchesWithOptions(ctx, tokens, settings.Systems, a.corpus.Entries(), matcher.Options{
		Tolerance:   settings.Tolerance,
		MaxResults:  settings.MaxResults,
		Ranking:     settings.Ranking,
		Parallelism: settings.Parallelism,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Text:       text,
		Settings:   settings,
		Tokens:     tokens,
		WordCount:  matcher.CountWords(text),
		MatchCount: matcher.CountMatches(groups),
		Groups:     groups,
		Duration:   time.Since(start),
	}

	a.mu.Lock()
	a.settings = settings
	a.last = result
	a.mu.Unlock()

	a.log.Info("analysis completed", map[string]interface{}{
		"wordCount":  result.WordCount,
		"tokens":     len(tokens),
		"matchCount": result.MatchCount,
		"systems":    gematria.Names(settings.Systems),
		"durationMs": result.Duration.Milliseconds(),
	})

	return result, nil
}

// Last returns the most recent result, or nil before the first analysis.
func (a *Analyzer) Last() *Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// GetGroup returns the last result's group for inputToken.
func (a *Analyzer) GetGroup(inputToken string) (matcher.MatchGroup, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.last == nil {
		return matcher.MatchGroup{}, false
	}
	inputToken = strings.ToLower(inputToken)
	for _, g := range a.last.Groups {
		if g.InputToken == inputToken {
			return g, true
		}
	}
	return matcher.MatchGroup{}, false
}

// Compare details how candidate word relates to inputToken in the last
// result, one row per analysed system.
func (a *Analyzer) Compare(inputToken, word string) (*Comparison, error) {
	group, ok := a.GetGroup(inputToken)
	if !ok {
		return nil, apperrors.NewMatchNotFoundError(inputToken, word)
	}

	word = strings.ToLower(word)
	for _, m := range group.Matches {
		if m.Token != word {
			continue
		}
		cmp := compareValues(group.InputToken, group.InputValues, m.Token, m.Values, group.InputValues.Systems())
		cmp.SimilarityScore = m.SimilarityScore
		cmp.TotalDifference = m.TotalDifference
		return cmp, nil
	}
	return nil, apperrors.NewMatchNotFoundError(inputToken, word)
}

// SettingsFromConfig converts the analysis section of the application
// config into Settings. Unknown system names are rejected.
func SettingsFromConfig(cfg config.AnalysisConfig) (Settings, error) {
	systems, err := gematria.ParseSystems(cfg.Systems)
	if err != nil {
		return Settings{}, apperrors.NewInvalidArgumentError("systems", err.Error())
	}
	s := Settings{
		Systems:     systems,
		MinLength:   cfg.MinLength,
		Tolerance:   cfg.Tolerance,
		MaxResults:  cfg.MaxResults,
		Ranking:     matcher.Ranking(cfg.Ranking),
		Parallelism: cfg.Parallelism,
	}
	return s, s.Validate()
}
