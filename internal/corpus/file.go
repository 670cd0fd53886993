// internal/corpus/file.go
package corpus

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "gematria-workers/internal/common/errors"
	"gematria-workers/internal/matcher"
)

// FileSource reads a local word list. Files ending in .json hold an array
// of {"word", "values"} objects; anything else is one word per line, with
// blank lines and lines starting with # ignored.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return "file:" + f.Path }

func (f FileSource) Load(ctx context.Context) ([]matcher.CorpusEntry, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, apperrors.NewCorpusLoadFailedError(f.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := Parse(data, isJSONPath(f.Path))
	if err != nil {
		return nil, apperrors.NewCorpusLoadFailedError(f.Name(), err)
	}
	return entries, nil
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Parse decodes a word list in either supported format.
func Parse(data []byte, asJSON bool) ([]matcher.CorpusEntry, error) {
	if asJSON {
		var entries []matcher.CorpusEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode corpus json: %w", err)
		}
		return normalize(entries), nil
	}
	words, err := ReadWords(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return Build(words), nil
}

// ReadWords reads one word per line.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return words, nil
}

// WriteJSON writes entries in the format FileSource reads back.
func WriteJSON(w io.Writer, entries []matcher.CorpusEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return apperrors.NewCorpusWriteFailedError("json", err)
	}
	return nil
}
