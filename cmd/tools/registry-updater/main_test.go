package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateThenValidate(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
app:
  version: 2.0.0
camunda:
  broker_address: localhost:26500
workers:
  notify-analysis:
    enabled: false
`), 0o600))

	out := filepath.Join(dir, "out", "activity-registry.json")
	n, err := generate(cfgPath, out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = validate(out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := validate(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"version":"1","activities":[]}`), 0o600))
	_, err = validate(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no activities")
}

func TestHelp(t *testing.T) {
	var buf bytes.Buffer
	help(&buf)

	out := buf.String()
	assert.Contains(t, out, "registry-updater generate -config")
	assert.Contains(t, out, "registry-updater validate -path")
	assert.NotContains(t, out, "\n\n\n")
}
