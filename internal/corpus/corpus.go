// internal/corpus/corpus.go
package corpus

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	apperrors "gematria-workers/internal/common/errors"
	"gematria-workers/internal/gematria"
	"gematria-workers/internal/matcher"
)

// MinWordLength is the shortest word Build keeps.
const MinWordLength = 3

// Source loads reference words from one backing store.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]matcher.CorpusEntry, error)
}

// builtinWords is the small sample list shipped with the tool.
var builtinWords = []string{
	"light", "dark", "love", "life", "death",
	"time", "space", "mind", "soul", "heart",
	"truth", "power", "energy", "secret", "magic",
	"spirit", "water", "fire", "earth", "air",
}

// BuiltinWords returns a copy of the shipped sample words.
func BuiltinWords() []string {
	return append([]string(nil), builtinWords...)
}

// Builtin serves the shipped sample words.
type Builtin struct{}

func (Builtin) Name() string { return "builtin" }

func (Builtin) Load(context.Context) ([]matcher.CorpusEntry, error) {
	return Build(builtinWords), nil
}

// Build normalises words and values them under every system. Words are
// lowercased and trimmed; those shorter than MinWordLength and repeats are
// dropped. Input order is kept.
func Build(words []string) []matcher.CorpusEntry {
	seen := make(map[string]struct{}, len(words))
	out := make([]matcher.CorpusEntry, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if utf8.RuneCountInString(w) < MinWordLength {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, matcher.CorpusEntry{Token: w, Values: gematria.ComputeAll(w)})
	}
	return out
}

// normalize fills in any system missing from loaded entries and drops
// repeated words and words shorter than MinWordLength, so every source
// yields what Build would.
func normalize(entries []matcher.CorpusEntry) []matcher.CorpusEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]matcher.CorpusEntry, 0, len(entries))
	for _, e := range entries {
		e.Token = strings.ToLower(strings.TrimSpace(e.Token))
		if utf8.RuneCountInString(e.Token) < MinWordLength {
			continue
		}
		if _, ok := seen[e.Token]; ok {
			continue
		}
		seen[e.Token] = struct{}{}
		if !e.Values.Covers(gematria.AllSystems) {
			e.Values = gematria.ComputeAll(e.Token)
		}
		out = append(out, e)
	}
	return out
}

// Store is the loaded, read-only corpus. It is safe for concurrent use.
type Store struct {
	source  string
	entries []matcher.CorpusEntry
	index   map[string]int
}

// NewStore wraps entries. The slice must not be modified afterwards.
func NewStore(source string, entries []matcher.CorpusEntry) *Store {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, ok := index[e.Token]; !ok {
			index[e.Token] = i
		}
	}
	return &Store{source: source, entries: entries, index: index}
}

// Load reads src once into a Store.
func Load(ctx context.Context, src Source) (*Store, error) {
	entries, err := src.Load(ctx)
	if err != nil {
		var se *apperrors.StandardError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, apperrors.NewCorpusLoadFailedError(src.Name(), err)
	}
	if len(entries) == 0 {
		return nil, apperrors.NewCorpusEmptyError(src.Name())
	}
	return NewStore(src.Name(), entries), nil
}

func (s *Store) Source() string { return s.source }

func (s *Store) Entries() []matcher.CorpusEntry { return s.entries }

func (s *Store) Len() int { return len(s.entries) }

// Lookup finds a word case-insensitively.
func (s *Store) Lookup(word string) (matcher.CorpusEntry, bool) {
	i, ok := s.index[strings.ToLower(strings.TrimSpace(word))]
	if !ok {
		return matcher.CorpusEntry{}, false
	}
	return s.entries[i], true
}
