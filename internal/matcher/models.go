// internal/matcher/models.go
package matcher

import "gematria-workers/internal/gematria"

// CorpusEntry is one reference word annotated over every numeral system.
type CorpusEntry struct {
	Token  string               `json:"word"`
	Values gematria.ValueVector `json:"values"`
}

// InputToken is one deduplicated word taken from the analysed text.
type InputToken struct {
	Token  string               `json:"word"`
	Values gematria.ValueVector `json:"values"`
	Length int                  `json:"length"`
}

// MatchCandidate is a corpus entry that agreed with an input token on at
// least one system.
type MatchCandidate struct {
	Token           string               `json:"word"`
	Values          gematria.ValueVector `json:"values"`
	SimilarityScore int                  `json:"similarityScore"`
	TotalDifference int                  `json:"totalDifference"`
	Length          int                  `json:"length"`
}

// MatchGroup holds the ranked candidates for one input token.
type MatchGroup struct {
	InputToken  string               `json:"inputWord"`
	InputValues gematria.ValueVector `json:"inputValues"`
	Matches     []MatchCandidate     `json:"matches"`
}

// Ranking selects how MatchGroups are ordered relative to each other.
type Ranking string

const (
	// RankByMatchCount orders groups by how many candidates they hold.
	// A group with one strong match can land below one with many weak
	// matches.
	RankByMatchCount Ranking = "match-count"
	// RankByBestMatch orders groups by the quality of their top candidate.
	RankByBestMatch Ranking = "best-match"
)

// Valid reports whether r is a known ranking (empty means the default).
func (r Ranking) Valid() bool {
	switch r {
	case "", RankByMatchCount, RankByBestMatch:
		return true
	}
	return false
}

// Options tunes FindMatchesWithOptions.
type Options struct {
	Tolerance  int
	MaxResults int
	Ranking    Ranking
	// Parallelism bounds the goroutines used across input tokens. Values
	// below 2 run sequentially.
	Parallelism int
}
