// internal/matcher/tokenize.go
package matcher

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"gematria-workers/internal/gematria"
)

var nonWord = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// words lowercases text and splits it on every run of non-word characters.
// Fullwidth forms and ligatures are folded to ASCII with NFKC first, so
// "ｌｉｇｈｔ" and "ﬁre" are words here where a plain \W split would drop
// or break them. Letters with no ASCII compatibility form still split.
func words(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	return strings.Fields(nonWord.ReplaceAllString(text, " "))
}

// CountWords returns how many words text holds before deduplication and
// length filtering.
func CountWords(text string) int {
	return len(words(text))
}

// Tokenize extracts the distinct words of text, in first-seen order,
// dropping any shorter than minLength characters.
func Tokenize(text string, minLength int) []string {
	all := words(text)
	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0, len(all))
	for _, w := range all {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		if utf8.RuneCountInString(w) < minLength {
			continue
		}
		out = append(out, w)
	}
	return out
}

// NewInputTokens annotates tokens with their values under systems.
func NewInputTokens(tokens []string, systems []gematria.NumeralSystem) []InputToken {
	out := make([]InputToken, len(tokens))
	for i, tok := range tokens {
		out[i] = InputToken{
			Token:  tok,
			Values: gematria.ComputeValues(tok, systems),
			Length: utf8.RuneCountInString(tok),
		}
	}
	return out
}
