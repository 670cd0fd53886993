// internal/workers/gematria/compare-words/config.go
package comparewords

import (
	"time"

	"gematria-workers/internal/analyzer"
	"gematria-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	Defaults analyzer.Settings
}

func LoadConfig(appCfg *config.Config) (*Config, error) {
	defaults, err := analyzer.SettingsFromConfig(appCfg.Analysis)
	if err != nil {
		return nil, err
	}
	return &Config{
		Timeout:  config.GetDuration(config.GetWorkerConfig(appCfg, TaskType).Timeout),
		Defaults: defaults,
	}, nil
}
