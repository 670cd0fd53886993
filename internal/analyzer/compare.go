// internal/analyzer/compare.go
package analyzer

import (
	"strings"

	apperrors "gematria-workers/internal/common/errors"
	"gematria-workers/internal/gematria"
)

// Closeness labels a single per-system difference.
type Closeness string

const (
	Exact Closeness = "exact"
	Close Closeness = "close"
	Far   Closeness = "far"
)

// closeLimit is the largest difference still labelled close.
const closeLimit = 2

// ClosenessOf labels an absolute difference.
func ClosenessOf(diff int) Closeness {
	switch {
	case diff == 0:
		return Exact
	case diff <= closeLimit:
		return Close
	default:
		return Far
	}
}

// ComparisonRow is one system's line in a comparison.
type ComparisonRow struct {
	System     gematria.NumeralSystem `json:"system"`
	Value      int                    `json:"value"`
	InputValue int                    `json:"inputValue"`
	Difference int                    `json:"difference"`
	Closeness  Closeness              `json:"closeness"`
}

// Comparison is the per-system breakdown between an input word and a
// corpus word.
type Comparison struct {
	InputWord       string          `json:"inputWord"`
	Word            string          `json:"word"`
	Rows            []ComparisonRow `json:"rows"`
	SimilarityScore int             `json:"similarityScore"`
	TotalDifference int             `json:"totalDifference"`
	Exact           bool            `json:"exact"`
}

// CompareWords values both words under systems and compares them. Unlike
// Analyzer.Compare it needs no prior analysis; the similarity score counts
// systems within tolerance.
func CompareWords(inputWord, word string, systems []gematria.NumeralSystem, tolerance int) (*Comparison, error) {
	inputWord = strings.ToLower(strings.TrimSpace(inputWord))
	word = strings.ToLower(strings.TrimSpace(word))
	if inputWord == "" {
		return nil, apperrors.NewInvalidArgumentError("inputWord", "word is empty")
	}
	if word == "" {
		return nil, apperrors.NewInvalidArgumentError("word", "word is empty")
	}
	if len(systems) == 0 {
		return nil, apperrors.NewInvalidArgumentError("systems", "at least one numeral system is required")
	}
	if tolerance < 0 {
		return nil, apperrors.NewInvalidArgumentError("tolerance", "must be >= 0")
	}
	systems = gematria.Unique(systems)

	cmp := compareValues(inputWord, gematria.ComputeValues(inputWord, systems), word, gematria.ComputeValues(word, systems), systems)
	for _, row := range cmp.Rows {
		if row.Difference <= tolerance {
			cmp.SimilarityScore++
		}
		cmp.TotalDifference += row.Difference
	}
	return cmp, nil
}

func compareValues(inputWord string, inputValues gematria.ValueVector, word string, values gematria.ValueVector, systems []gematria.NumeralSystem) *Comparison {
	cmp := &Comparison{
		InputWord: inputWord,
		Word:      word,
		Rows:      make([]ComparisonRow, 0, len(systems)),
		Exact:     true,
	}
	for _, s := range systems {
		iv := inputValues[s]
		v, ok := values[s]
		if !ok {
			v = gematria.ComputeValue(word, s)
		}
		diff := iv - v
		if diff < 0 {
			diff = -diff
		}
		if diff != 0 {
			cmp.Exact = false
		}
		cmp.Rows = append(cmp.Rows, ComparisonRow{
			System:     s,
			Value:      v,
			InputValue: iv,
			Difference: diff,
			Closeness:  ClosenessOf(diff),
		})
	}
	return cmp
}
