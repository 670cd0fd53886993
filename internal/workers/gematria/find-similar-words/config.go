// internal/workers/gematria/find-similar-words/config.go
package findsimilarwords

import (
	"time"

	"gematria-workers/internal/analyzer"
	"gematria-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	Defaults analyzer.Settings
}

func LoadConfig(appCfg *config.Config) (*Config, error) {
	defaults, err := analyzer.SettingsFromConfig(appCfg.Analysis)
	if err != nil {
		return nil, err
	}
	wc := config.GetWorkerConfig(appCfg, TaskType)
	return &Config{
		Timeout:  config.GetDuration(wc.Timeout),
		CacheTTL: time.Duration(appCfg.Analysis.CacheTTL) * time.Second,
		Defaults: defaults,
	}, nil
}
