package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gematria-workers/internal/common/config"
	apphttp "gematria-workers/internal/common/http"
	"gematria-workers/internal/corpus"
)

func TestNewCorpusSource(t *testing.T) {
	deps := &dependencies{http: apphttp.NewClient(time.Second, "test")}

	tests := []struct {
		name     string
		cfg      config.CorpusConfig
		wantName string
		wantErr  bool
	}{
		{"default", config.CorpusConfig{}, "builtin", false},
		{"builtin", config.CorpusConfig{Source: "builtin"}, "builtin", false},
		{"file", config.CorpusConfig{Source: "file", Path: "words.txt"}, "file:words.txt", false},
		{"url", config.CorpusConfig{Source: "url", URL: "http://example.com/w"}, "url:http://example.com/w", false},
		{"postgres without database", config.CorpusConfig{Source: "postgres"}, "", true},
		{"elasticsearch without cluster", config.CorpusConfig{Source: "elasticsearch"}, "", true},
		{"unknown", config.CorpusConfig{Source: "s3"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := newCorpusSource(tt.cfg, deps)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name())
		})
	}
}

func TestNewCorpusSource_Postgres(t *testing.T) {
	deps := &dependencies{repo: corpus.NewPostgresRepository(nil, "gematria_words")}
	src, err := newCorpusSource(config.CorpusConfig{Source: "postgres"}, deps)
	require.NoError(t, err)
	assert.Equal(t, "postgres", src.Name())
}
