// internal/workers/gematria/calculate-gematria/config.go
package calculategematria

import (
	"time"

	"gematria-workers/internal/common/config"
)

type Config struct {
	Timeout   time.Duration
	MaxTokens int
}

func LoadConfig(appCfg *config.Config) *Config {
	wc := config.GetWorkerConfig(appCfg, TaskType)
	return &Config{
		Timeout:   config.GetDuration(wc.Timeout),
		MaxTokens: 1000,
	}
}
