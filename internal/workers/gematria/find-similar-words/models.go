// internal/workers/gematria/find-similar-words/models.go
package findsimilarwords

import "gematria-workers/internal/matcher"

// Input fields left out fall back to the configured analysis defaults.
type Input struct {
	Text       string   `json:"text"`
	Systems    []string `json:"systems,omitempty"`
	MinLength  *int     `json:"minLength,omitempty"`
	Tolerance  *int     `json:"tolerance,omitempty"`
	MaxResults *int     `json:"maxResults,omitempty"`
	Ranking    string   `json:"ranking,omitempty"`
}

type Output struct {
	AnalysisID string               `json:"analysisId"`
	WordCount  int                  `json:"wordCount"`
	TokenCount int                  `json:"tokenCount"`
	MatchCount int                  `json:"matchCount"`
	Systems    []string             `json:"systems"`
	Groups     []matcher.MatchGroup `json:"groups"`
	Cached     bool                 `json:"cached"`
}

const inputSchema = `{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text":       {"type": "string", "minLength": 1, "maxLength": 100000},
		"systems":    {"type": "array", "minItems": 1, "items": {"type": "string"}},
		"minLength":  {"type": "integer", "minimum": 1},
		"tolerance":  {"type": "integer", "minimum": 0},
		"maxResults": {"type": "integer", "minimum": 0},
		"ranking":    {"type": "string", "enum": ["match-count", "best-match"]}
	}
}`
