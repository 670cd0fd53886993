package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"gematria-workers/internal/analyzer"
	"gematria-workers/internal/corpus"
	"gematria-workers/internal/matcher"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	app := newApp()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"gematria"}, args...))
	return stdout.String(), stderr.String(), err
}

// ==========================
// values
// ==========================

func TestValues_Table(t *testing.T) {
	out, _, err := run(t, "values", "-s", "english", "-s", "jewish", "Light dark")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"WORD", "ENGLISH", "JEWISH"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"light", "56", "144"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"dark", "34", "95"}, strings.Fields(lines[2]))
}

func TestValues_JSON(t *testing.T) {
	out, _, err := run(t, "values", "--json", "heart")
	require.NoError(t, err)

	var entries []matcher.CorpusEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "heart", entries[0].Token)
	assert.Len(t, entries[0].Values, 6)
}

func TestValues_Errors(t *testing.T) {
	_, _, err := run(t, "values")
	assert.Error(t, err)

	_, _, err = run(t, "values", "-s", "klingon", "heart")
	assert.Error(t, err)
}

// ==========================
// analyze
// ==========================

func TestAnalyze_BuiltinCorpus(t *testing.T) {
	out, _, err := run(t, "analyze", "--json", "heart")
	require.NoError(t, err)

	var result analyzer.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.WordCount)
	require.Len(t, result.Groups, 1)
	require.NotEmpty(t, result.Groups[0].Matches)
	assert.Equal(t, "earth", result.Groups[0].Matches[0].Token)
}

func TestAnalyze_TextOutputWithFileCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("earth\nwater\n"), 0o600))

	out, _, err := run(t, "analyze", "-c", path, "heart soul")
	require.NoError(t, err)
	assert.Contains(t, out, "2 words, 2 distinct")
	assert.Contains(t, out, "* earth")
}

func TestAnalyze_InvalidArguments(t *testing.T) {
	_, _, err := run(t, "analyze", "--tolerance=-1", "heart")
	assert.Error(t, err)

	_, _, err = run(t, "analyze", "--ranking", "alphabetical", "heart")
	assert.Error(t, err)
}

// ==========================
// build-corpus
// ==========================

func TestBuildCorpus(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "words.txt")
	outPath := filepath.Join(dir, "corpus.json")
	require.NoError(t, os.WriteFile(in, []byte("Light\ndark\nlight\n"), 0o600))

	_, stderr, err := run(t, "build-corpus", "--in", in, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "2 words written")

	entries, err := corpus.FileSource{Path: outPath}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, corpus.Build([]string{"light", "dark"}), entries)
}

func TestBuildCorpus_MissingInput(t *testing.T) {
	_, _, err := run(t, "build-corpus", "--in", filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
