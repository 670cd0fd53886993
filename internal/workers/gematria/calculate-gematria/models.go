// internal/workers/gematria/calculate-gematria/models.go
package calculategematria

import "gematria-workers/internal/gematria"

type Input struct {
	Text    string   `json:"text"`
	Systems []string `json:"systems,omitempty"`
}

type TokenValues struct {
	Word   string               `json:"word"`
	Length int                  `json:"length"`
	Values gematria.ValueVector `json:"values"`
}

type Output struct {
	Tokens    []TokenValues `json:"tokens"`
	WordCount int           `json:"wordCount"`
	Systems   []string      `json:"systems"`
}
