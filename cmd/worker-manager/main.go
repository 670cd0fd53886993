// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gematria-workers/internal/analyzer"
	"gematria-workers/internal/api"
	awsclients "gematria-workers/internal/common/aws"
	"gematria-workers/internal/common/camunda"
	"gematria-workers/internal/common/config"
	"gematria-workers/internal/common/database"
	apphttp "gematria-workers/internal/common/http"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/common/metrics"
	"gematria-workers/internal/common/observability"
	"gematria-workers/internal/corpus"

	cg "gematria-workers/internal/workers/gematria/calculate-gematria"
	cw "gematria-workers/internal/workers/gematria/compare-words"
	fsw "gematria-workers/internal/workers/gematria/find-similar-words"
	na "gematria-workers/internal/workers/gematria/notify-analysis"
	sc "gematria-workers/internal/workers/gematria/sync-corpus"
	"gematria-workers/pkg/registry"
)

var connectRetry = &camunda.RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": cfg.App.Name})

	log.Info("starting worker manager", map[string]interface{}{
		"environment":  cfg.App.Environment,
		"corpusSource": cfg.Corpus.Source,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name, log)

	// --- Zeebe ---
	zc, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            connectRetry,
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	defer zc.Close()
	log.Info("zeebe client connected", nil)

	checks := map[string]api.Pinger{"zeebe": zc}
	deps := &dependencies{}

	// --- PostgreSQL ---
	if cfg.Database.Postgres.Configured() {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres open failed", zap.Error(err))
		}
		defer pg.Close()
		if err := camunda.Retry(ctx, connectRetry, "postgres", pg.Ping); err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		checks["postgres"] = pg

		deps.repo = corpus.NewPostgresRepository(pg.DB, cfg.Corpus.Table)
		if err := deps.repo.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("corpus schema setup failed", zap.Error(err))
		}
		log.Info("postgres connected", nil)
	}

	// --- Elasticsearch ---
	if len(cfg.Database.Elasticsearch.GetAddresses()) > 0 {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
		if err := camunda.Retry(ctx, connectRetry, "elasticsearch", es.Ping); err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		checks["elasticsearch"] = es

		deps.index = corpus.NewElasticsearchIndex(es.Client, cfg.Corpus.Index, cfg.Corpus.MaxSize)
		log.Info("elasticsearch connected", nil)
	}

	// --- Redis ---
	if cfg.Database.Redis.Address != "" {
		rc := database.NewRedis(cfg.Database.Redis)
		defer rc.Close()
		if err := camunda.Retry(ctx, connectRetry, "redis", rc.Ping); err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		checks["redis"] = rc
		deps.redis = rc.Client
		log.Info("redis connected", nil)
	}

	deps.http = apphttp.NewClient(config.GetDuration(cfg.Corpus.Timeout), cfg.App.Name+"/"+cfg.App.Version)

	// --- Corpus ---
	src, err := newCorpusSource(cfg.Corpus, deps)
	if err != nil {
		zapLog.Fatal("corpus source invalid", zap.Error(err))
	}
	loadCtx, cancelLoad := context.WithTimeout(ctx, config.GetDuration(cfg.Corpus.Timeout))
	store, err := corpus.Load(loadCtx, src)
	cancelLoad()
	if err != nil {
		zapLog.Fatal("corpus load failed", zap.Error(err))
	}
	metrics.CorpusEntries.WithLabelValues(store.Source()).Set(float64(store.Len()))
	log.Info("corpus loaded", map[string]interface{}{
		"source":  store.Source(),
		"entries": store.Len(),
	})

	defaults, err := analyzer.SettingsFromConfig(cfg.Analysis)
	if err != nil {
		zapLog.Fatal("analysis settings invalid", zap.Error(err))
	}

	var rdb redis.Cmdable
	if deps.redis != nil {
		rdb = deps.redis
	}
	valueCache := corpus.NewValueCache(rdb, time.Duration(cfg.Analysis.CacheTTL)*time.Second, log)

	// --- Workers ---
	workers, err := startWorkers(ctx, cfg, zc, store, valueCache, rdb, deps, obs, log)
	if err != nil {
		zapLog.Fatal("worker setup failed", zap.Error(err))
	}

	activities := registry.Build(cfg)
	log.Info("activities registered", map[string]interface{}{
		"enabled": activities.Enabled(),
		"workers": len(workers),
	})

	// --- HTTP API ---
	handler := api.NewHandler(api.Options{
		Analyzer: analyzer.New(store, log),
		Corpus:   store,
		Cache:    valueCache,
		Defaults: defaults,
		Checks:   checks,
		Registry: activities,
		Obs:      obs,
		Logger:   log,
	})
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		log.Info("http server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	for _, w := range workers {
		w.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("worker manager stopped", nil)
}

func startWorkers(
	ctx context.Context,
	cfg *config.Config,
	zc *camunda.Client,
	store *corpus.Store,
	valueCache *corpus.ValueCache,
	rdb redis.Cmdable,
	deps *dependencies,
	obs *observability.Observability,
	log logger.Logger,
) ([]*camunda.Worker, error) {
	var workers []*camunda.Worker
	start := func(taskType string, h camunda.JobHandler) {
		wc := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(zc.GetClient(), taskType, camunda.WorkerOptions{
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
		}, h, log))
	}

	if config.IsWorkerEnabled(cfg, cg.TaskType) {
		start(cg.TaskType, cg.NewHandler(cg.LoadConfig(cfg), valueCache, log))
	}

	if config.IsWorkerEnabled(cfg, fsw.TaskType) {
		wcfg, err := fsw.LoadConfig(cfg)
		if err != nil {
			return nil, err
		}
		start(fsw.TaskType, fsw.NewHandler(wcfg, analyzer.New(store, log), rdb, obs, log))
	}

	if config.IsWorkerEnabled(cfg, cw.TaskType) {
		wcfg, err := cw.LoadConfig(cfg)
		if err != nil {
			return nil, err
		}
		start(cw.TaskType, cw.NewHandler(wcfg, log))
	}

	if config.IsWorkerEnabled(cfg, sc.TaskType) {
		var up sc.Upserter
		if deps.repo != nil {
			up = deps.repo
		}
		var ix sc.Indexer
		if deps.index != nil {
			ix = deps.index
		}
		start(sc.TaskType, sc.NewHandler(sc.LoadConfig(cfg), up, ix, deps.http, log))
	}

	if config.IsWorkerEnabled(cfg, na.TaskType) {
		clients, err := awsclients.NewClients(ctx, cfg.Notifications)
		if err != nil {
			return nil, err
		}
		var sesSvc na.SESService
		if clients.SES != nil {
			sesSvc = clients.SES
		}
		var snsSvc na.SNSService
		if clients.SNS != nil {
			snsSvc = clients.SNS
		}
		start(na.TaskType, na.NewHandler(na.LoadConfig(cfg), sesSvc, snsSvc, rdb, log))
	}

	return workers, nil
}
