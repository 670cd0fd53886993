// internal/workers/gematria/notify-analysis/handler_test.go
package notifyanalysis

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gematria-workers/internal/common/errors"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/gematria"
	"gematria-workers/internal/matcher"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         int
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       int
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls++
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createTestConfig() *Config {
	return &Config{
		EmailEnabled:    true,
		SNSEnabled:      true,
		FromEmail:       "noreply@gematria.example",
		DefaultTopicARN: "arn:aws:sns:us-east-1:123456789012:gematria",
		MaxGroups:       10,
		Timeout:         30 * time.Second,
		DeliveryTTL:     time.Hour,
	}
}

func createTestInput() *Input {
	heart := gematria.ComputeValues("heart", []gematria.NumeralSystem{gematria.Ordinal})
	return &Input{
		AnalysisID:     "analysis-001",
		RecipientEmail: "reader@example.com",
		WordCount:      2,
		MatchCount:     1,
		Groups: []matcher.MatchGroup{
			{
				InputToken:  "heart",
				InputValues: heart,
				Matches: []matcher.MatchCandidate{
					{Token: "earth", Values: gematria.ComputeAll("earth"), SimilarityScore: 1},
				},
			},
			{InputToken: "light", Matches: []matcher.MatchCandidate{}},
		},
	}
}

func okSES(t *testing.T) *MockSESService {
	return &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, "reader@example.com", params.Destination.ToAddresses[0])
			assert.Equal(t, "noreply@gematria.example", *params.Source)
			assert.Contains(t, *params.Message.Subject.Data, "analysis-001")
			return &ses.SendEmailOutput{}, nil
		},
	}
}

func okSNS(t *testing.T, wantTopic string) *MockSNSService {
	return &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Equal(t, wantTopic, *params.TopicArn)
			assert.LessOrEqual(t, len(*params.Subject), 100)
			return &sns.PublishOutput{}, nil
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name         string
		emailEnabled bool
		snsEnabled   bool
		topicARN     string
		wantStatus   string
		wantChannels []string
	}{
		{
			name:         "email and SNS",
			emailEnabled: true,
			snsEnabled:   true,
			wantStatus:   StatusSent,
			wantChannels: []string{"email", "sns"},
		},
		{
			name:         "email only",
			emailEnabled: true,
			wantStatus:   StatusSent,
			wantChannels: []string{"email"},
		},
		{
			name:         "SNS with explicit topic",
			snsEnabled:   true,
			topicARN:     "arn:aws:sns:us-east-1:123456789012:other",
			wantStatus:   StatusSent,
			wantChannels: []string{"sns"},
		},
		{
			name:         "everything disabled",
			wantStatus:   StatusDisabled,
			wantChannels: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			config.EmailEnabled = tt.emailEnabled
			config.SNSEnabled = tt.snsEnabled

			wantTopic := config.DefaultTopicARN
			if tt.topicARN != "" {
				wantTopic = tt.topicARN
			}

			handler := NewHandler(config, okSES(t), okSNS(t, wantTopic), nil, createTestLogger(t))

			input := createTestInput()
			input.TopicARN = tt.topicARN

			output, err := handler.Execute(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, output.Status)
			assert.Equal(t, tt.wantChannels, output.Channels)
			assert.NotEmpty(t, output.NotificationID)
			assert.NotEmpty(t, output.SentAt)
		})
	}
}

func TestHandler_Execute_NoRecipientSkipsEmail(t *testing.T) {
	mockSES := okSES(t)
	config := createTestConfig()
	config.SNSEnabled = false

	handler := NewHandler(config, mockSES, nil, nil, createTestLogger(t))
	input := createTestInput()
	input.RecipientEmail = ""

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Zero(t, mockSES.calls)
}

func TestRenderSummary(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, createTestLogger(t))
	body := handler.renderSummary(createTestInput())

	assert.Contains(t, body, "Analysis analysis-001")
	assert.Contains(t, body, "Words: 2, matches: 1")
	assert.Contains(t, body, "heart: earth*(1/0)")
	assert.NotContains(t, body, "light:")
}

func TestRenderSummary_LimitsGroups(t *testing.T) {
	config := createTestConfig()
	config.MaxGroups = 1
	handler := NewHandler(config, nil, nil, nil, createTestLogger(t))

	input := createTestInput()
	input.Groups = append(input.Groups, matcher.MatchGroup{
		InputToken: "dark",
		Matches:    []matcher.MatchCandidate{{Token: "heart", SimilarityScore: 1, TotalDifference: 27}},
	})

	body := handler.renderSummary(input)
	assert.Contains(t, body, "heart:")
	assert.NotContains(t, body, "dark:")
	assert.Equal(t, 1, strings.Count(body, "more groups omitted"))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_SendFailures(t *testing.T) {
	failingSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, stderrors.New("MessageRejected")
		},
	}
	failingSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, stderrors.New("AuthorizationError")
		},
	}

	t.Run("email failure", func(t *testing.T) {
		handler := NewHandler(createTestConfig(), failingSES, okSNS(t, ""), nil, createTestLogger(t))
		_, err := handler.Execute(context.Background(), createTestInput())
		require.Error(t, err)
		stdErr := errors.AsStandardError(err)
		assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
		assert.Contains(t, stdErr.Details, "MessageRejected")
	})

	t.Run("sns failure", func(t *testing.T) {
		handler := NewHandler(createTestConfig(), okSES(t), failingSNS, nil, createTestLogger(t))
		_, err := handler.Execute(context.Background(), createTestInput())
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeNotificationSendFailed, errors.AsStandardError(err).Code)
	})
}

func TestHandler_Execute_MissingAnalysisID(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, createTestLogger(t))
	input := createTestInput()
	input.AnalysisID = " "

	_, err := handler.Execute(context.Background(), input)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestHandler_Execute_RetryAfterPartialFailureSkipsDeliveredChannels(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mockSES := okSES(t)
	snsDown := true
	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			if snsDown {
				return nil, stderrors.New("Throttling")
			}
			return &sns.PublishOutput{}, nil
		},
	}
	handler := NewHandler(createTestConfig(), mockSES, mockSNS, rdb, createTestLogger(t))

	_, err := handler.Execute(context.Background(), createTestInput())
	require.Error(t, err)
	assert.Equal(t, 1, mockSES.calls)
	assert.True(t, mr.Exists("gematria:notify:analysis-001:email"))
	assert.False(t, mr.Exists("gematria:notify:analysis-001:sns"))

	snsDown = false
	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, 1, mockSES.calls, "email must not be sent twice")
	assert.Equal(t, 2, mockSNS.calls)
	assert.Equal(t, []string{"email", "sns"}, output.Channels)
	assert.Equal(t, StatusSent, output.Status)
}

func TestHandler_Execute_RedisDownStillSends(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	mockSES := okSES(t)
	config := createTestConfig()
	config.SNSEnabled = false
	handler := NewHandler(config, mockSES, nil, rdb, createTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, output.Channels)
	assert.Equal(t, 1, mockSES.calls)
}
