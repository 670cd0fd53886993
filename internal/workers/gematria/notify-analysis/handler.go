// internal/workers/gematria/notify-analysis/handler.go
package notifyanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gematria-workers/internal/common/camunda"
	"gematria-workers/internal/common/errors"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/common/metrics"
	"gematria-workers/internal/matcher"
)

const (
	TaskType = "notify-analysis"

	// topMatches is how many candidates per group the summary lists.
	topMatches = 3

	deliveredKeyPrefix = "gematria:notify:"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config     *Config
	sesClient  SESService
	snsClient  SNSService
	redis      redis.Cmdable
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler builds the handler. Pass nil for a channel that is disabled.
// Without rdb a retried job may repeat a channel that already went out.
func NewHandler(config *Config, sesClient SESService, snsClient SNSService, rdb redis.Cmdable, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		sesClient:  sesClient,
		snsClient:  snsClient,
		redis:      rdb,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewParseError(err))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// Execute sends the analysis summary on every enabled channel that has a
// destination. With none, the job completes with status disabled. Each
// delivered channel is recorded per analysis, so a retry after a partial
// failure only sends what is still missing.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.AnalysisID) == "" {
		return nil, errors.NewInvalidArgumentError("analysisId", "analysisId is required")
	}

	subject := fmt.Sprintf("Gematria analysis %s: %d matches", input.AnalysisID, input.MatchCount)
	body := h.renderSummary(input)

	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       []string{},
	}

	if h.config.EmailEnabled && h.sesClient != nil && input.RecipientEmail != "" {
		err := h.deliver(ctx, input.AnalysisID, "email", func() error {
			return h.sendEmail(ctx, input.RecipientEmail, subject, body)
		})
		if err != nil {
			return nil, err
		}
		out.Channels = append(out.Channels, "email")
	}

	topic := input.TopicARN
	if topic == "" {
		topic = h.config.DefaultTopicARN
	}
	if h.config.SNSEnabled && h.snsClient != nil && topic != "" {
		err := h.deliver(ctx, input.AnalysisID, "sns", func() error {
			return h.publish(ctx, topic, subject, body)
		})
		if err != nil {
			return nil, err
		}
		out.Channels = append(out.Channels, "sns")
	}

	if len(out.Channels) > 0 {
		out.Status = StatusSent
	}
	out.SentAt = time.Now().UTC().Format(time.RFC3339)

	h.logger.Info("analysis notification processed", map[string]interface{}{
		"analysisId":     input.AnalysisID,
		"notificationId": out.NotificationID,
		"status":         out.Status,
		"channels":       out.Channels,
	})
	return out, nil
}

// deliver runs send unless channel already went out for analysisID, then
// records it. Ledger errors are logged and never block a send.
func (h *Handler) deliver(ctx context.Context, analysisID, channel string, send func() error) error {
	key := deliveredKeyPrefix + analysisID + ":" + channel
	if h.delivered(ctx, key) {
		h.logger.Info("channel already delivered, skipping", map[string]interface{}{
			"analysisId": analysisID,
			"channel":    channel,
		})
		return nil
	}
	if err := send(); err != nil {
		return errors.NewNotificationSendFailedError(channel, err)
	}
	if h.redis == nil {
		return nil
	}
	if err := h.redis.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), h.config.DeliveryTTL).Err(); err != nil {
		h.logger.Warn("delivery record write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return nil
}

func (h *Handler) delivered(ctx context.Context, key string) bool {
	if h.redis == nil {
		return false
	}
	n, err := h.redis.Exists(ctx, key).Result()
	if err != nil {
		h.logger.Warn("delivery record read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return n > 0
}

// renderSummary lists the best few candidates of each non-empty group.
func (h *Handler) renderSummary(input *Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis %s\n", input.AnalysisID)
	fmt.Fprintf(&b, "Words: %d, matches: %d\n", input.WordCount, input.MatchCount)

	shown := 0
	for _, g := range input.Groups {
		if len(g.Matches) == 0 {
			continue
		}
		if h.config.MaxGroups > 0 && shown == h.config.MaxGroups {
			fmt.Fprintf(&b, "\n(more groups omitted)\n")
			break
		}
		shown++

		fmt.Fprintf(&b, "\n%s:", g.InputToken)
		for i, m := range g.Matches {
			if i == topMatches {
				break
			}
			fmt.Fprintf(&b, " %s", describe(g, m))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describe(g matcher.MatchGroup, m matcher.MatchCandidate) string {
	mark := ""
	if matcher.IsExactMatch(g, m) {
		mark = "*"
	}
	return fmt.Sprintf("%s%s(%d/%d)", m.Token, mark, m.SimilarityScore, m.TotalDifference)
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) publish(ctx context.Context, topicARN, subject, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String(truncate(subject, 100)),
		Message:  aws.String(message),
	})
	return err
}

// truncate cuts s to n bytes; SNS rejects longer subjects.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}
