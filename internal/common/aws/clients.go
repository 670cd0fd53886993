// internal/common/aws/clients.go
package aws

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"gematria-workers/internal/common/config"
)

// Clients holds the notification clients enabled in configuration. A
// disabled channel leaves its field nil.
type Clients struct {
	SES *ses.Client
	SNS *sns.Client
}

// NewClients loads the default AWS credential chain for the configured
// region and builds a client per enabled channel.
func NewClients(ctx context.Context, cfg config.NotificationConfig) (*Clients, error) {
	if !cfg.Email.Enabled && !cfg.SNS.Enabled {
		return &Clients{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	clients := &Clients{}
	if cfg.Email.Enabled {
		clients.SES = ses.NewFromConfig(awsCfg)
	}
	if cfg.SNS.Enabled {
		clients.SNS = sns.NewFromConfig(awsCfg)
	}
	return clients, nil
}
