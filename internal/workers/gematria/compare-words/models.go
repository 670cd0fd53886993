// internal/workers/gematria/compare-words/models.go
package comparewords

import "gematria-workers/internal/analyzer"

type Input struct {
	InputWord string   `json:"inputWord"`
	Word      string   `json:"word"`
	Systems   []string `json:"systems,omitempty"`
	Tolerance *int     `json:"tolerance,omitempty"`
}

type Output struct {
	analyzer.Comparison
	CloseSystems []string `json:"closeSystems"`
}
