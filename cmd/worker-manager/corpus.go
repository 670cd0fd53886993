// cmd/worker-manager/corpus.go
package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"gematria-workers/internal/common/config"
	apphttp "gematria-workers/internal/common/http"
	"gematria-workers/internal/corpus"
)

// dependencies are the optional backends; nil fields are not configured.
type dependencies struct {
	repo  *corpus.PostgresRepository
	index *corpus.ElasticsearchIndex
	redis *redis.Client
	http  *apphttp.Client
}

func newCorpusSource(cfg config.CorpusConfig, deps *dependencies) (corpus.Source, error) {
	switch cfg.Source {
	case "", config.CorpusSourceBuiltin:
		return corpus.Builtin{}, nil
	case config.CorpusSourceFile:
		return corpus.FileSource{Path: cfg.Path}, nil
	case config.CorpusSourceURL:
		return corpus.RemoteSource{URL: cfg.URL, Client: deps.http}, nil
	case config.CorpusSourcePostgres:
		if deps.repo == nil {
			return nil, fmt.Errorf("corpus source %q needs database.postgres", cfg.Source)
		}
		return deps.repo, nil
	case config.CorpusSourceElasticsearch:
		if deps.index == nil {
			return nil, fmt.Errorf("corpus source %q needs database.elasticsearch", cfg.Source)
		}
		return deps.index, nil
	default:
		return nil, fmt.Errorf("unknown corpus source %q", cfg.Source)
	}
}
