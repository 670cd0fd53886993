// internal/workers/gematria/sync-corpus/config.go
package synccorpus

import (
	"time"

	"gematria-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	MaxWords int
}

func LoadConfig(appCfg *config.Config) *Config {
	return &Config{
		Timeout:  config.GetDuration(config.GetWorkerConfig(appCfg, TaskType).Timeout),
		MaxWords: appCfg.Corpus.MaxSize,
	}
}
