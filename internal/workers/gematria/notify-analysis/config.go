// internal/workers/gematria/notify-analysis/config.go
package notifyanalysis

import (
	"time"

	"gematria-workers/internal/common/config"
)

type Config struct {
	EmailEnabled    bool
	SNSEnabled      bool
	FromEmail       string
	DefaultTopicARN string
	MaxGroups       int
	Timeout         time.Duration
	// DeliveryTTL is how long a delivered channel is remembered per analysis.
	DeliveryTTL time.Duration
}

func LoadConfig(appCfg *config.Config) *Config {
	n := appCfg.Notifications
	return &Config{
		EmailEnabled:    n.Email.Enabled,
		SNSEnabled:      n.SNS.Enabled,
		FromEmail:       n.Email.FromEmail,
		DefaultTopicARN: n.SNS.TopicARN,
		MaxGroups:       10,
		DeliveryTTL:     24 * time.Hour,
		Timeout:         config.GetDuration(config.GetWorkerConfig(appCfg, TaskType).Timeout),
	}
}
