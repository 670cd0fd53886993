// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gematria-workers/internal/analyzer"
	"gematria-workers/internal/common/config"
	"gematria-workers/internal/common/database"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/corpus"

	calculategematria "gematria-workers/internal/workers/gematria/calculate-gematria"
	comparewords "gematria-workers/internal/workers/gematria/compare-words"
	findsimilarwords "gematria-workers/internal/workers/gematria/find-similar-words"
	synccorpus "gematria-workers/internal/workers/gematria/sync-corpus"
)

const e2eTable = "gematria_words_e2e"

// requireServices skips unless E2E is set. The run expects PostgreSQL,
// Redis and Elasticsearch on localhost.
func requireServices(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("E2E") == "" {
		t.Skip("set E2E=1 to run against local PostgreSQL, Redis and Elasticsearch")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	if cfg.Database.Postgres.Database == "" {
		cfg.Database.Postgres.Database = "gematria"
	}
	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = "postgres"
	}
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.Addresses = nil
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"
	return cfg
}

func TestFullE2E(t *testing.T) {
	cfg := requireServices(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log := logger.NewZapAdapter(zap.NewExample())

	// 1. Connectivity
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")

	rc := database.NewRedis(cfg.Database.Redis)
	defer rc.Close()
	require.NoError(t, rc.Ping(ctx), "Redis ping failed")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err, "Elasticsearch client creation failed")
	require.NoError(t, es.Ping(ctx), "Elasticsearch ping failed")

	// 2. Sync a word list into both stores
	repo := corpus.NewPostgresRepository(pg.DB, e2eTable)
	require.NoError(t, repo.EnsureSchema(ctx))
	defer pg.DB.Exec(`DROP TABLE IF EXISTS "` + e2eTable + `"`)

	index := corpus.NewElasticsearchIndex(es.Client, "gematria-words-e2e", cfg.Corpus.MaxSize)

	sync := synccorpus.NewHandler(synccorpus.LoadConfig(cfg), repo, index, nil, log)
	synced, err := sync.Execute(ctx, &synccorpus.Input{})
	require.NoError(t, err)
	assert.Equal(t, "builtin", synced.Source)
	assert.Equal(t, 20, synced.Upserted)
	assert.Equal(t, 20, synced.Indexed)

	// 3. Load the corpus back from PostgreSQL
	store, err := corpus.Load(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 20, store.Len())

	// 4. Analyze twice; the second run is served from Redis
	fcfg, err := findsimilarwords.LoadConfig(cfg)
	require.NoError(t, err)
	find := findsimilarwords.NewHandler(fcfg, analyzer.New(store, log), rc.Client, nil, log)

	keys, err := rc.Client.Keys(ctx, "gematria:analysis:*").Result()
	require.NoError(t, err)
	if len(keys) > 0 {
		require.NoError(t, rc.Client.Del(ctx, keys...).Err())
	}

	text := "heart"
	first, err := find.Execute(ctx, &findsimilarwords.Input{Text: text})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.NotEmpty(t, first.Groups)
	assert.Equal(t, "heart", first.Groups[0].InputToken)
	assert.Equal(t, "earth", first.Groups[0].Matches[0].Token)

	second, err := find.Execute(ctx, &findsimilarwords.Input{Text: text})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Groups, second.Groups)
	assert.NotEqual(t, first.AnalysisID, second.AnalysisID)

	// 5. Values go through the Redis value cache
	calc := calculategematria.NewHandler(calculategematria.LoadConfig(cfg), corpus.NewValueCache(rc.Client, time.Minute, log), log)
	values, err := calc.Execute(ctx, &calculategematria.Input{Text: "light"})
	require.NoError(t, err)
	require.Len(t, values.Tokens, 1)
}

// ==========================
// Benchmarks (no external services)
// ==========================

func benchConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			Systems:    []string{"english", "reduced", "reverse"},
			MinLength:  3,
			Tolerance:  2,
			MaxResults: 10,
			Ranking:    "match-count",
		},
		Corpus: config.CorpusConfig{MaxSize: 10000},
	}
}

func BenchmarkHandler_CalculateGematria(b *testing.B) {
	h := calculategematria.NewHandler(calculategematria.LoadConfig(benchConfig()), nil, logger.NewNoOpLogger())
	input := &calculategematria.Input{Text: "The quick brown fox jumps over the lazy dog"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Execute(ctx, input)
	}
}

func BenchmarkHandler_FindSimilarWords(b *testing.B) {
	store, err := corpus.Load(context.Background(), corpus.Builtin{})
	require.NoError(b, err)
	cfg, err := findsimilarwords.LoadConfig(benchConfig())
	require.NoError(b, err)

	h := findsimilarwords.NewHandler(cfg, analyzer.New(store, logger.NewNoOpLogger()), nil, nil, logger.NewNoOpLogger())
	input := &findsimilarwords.Input{Text: "Light and dark, heart and soul, the power of fate"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Execute(ctx, input)
	}
}

func BenchmarkHandler_CompareWords(b *testing.B) {
	cfg, err := comparewords.LoadConfig(benchConfig())
	require.NoError(b, err)
	h := comparewords.NewHandler(cfg, logger.NewNoOpLogger())
	input := &comparewords.Input{InputWord: "heart", Word: "earth"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Execute(ctx, input)
	}
}
