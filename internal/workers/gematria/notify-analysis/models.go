// internal/workers/gematria/notify-analysis/models.go
package notifyanalysis

import "gematria-workers/internal/matcher"

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

// Input is typically the output of find-similar-words plus a recipient.
type Input struct {
	AnalysisID     string               `json:"analysisId"`
	RecipientEmail string               `json:"recipientEmail,omitempty"`
	TopicARN       string               `json:"topicArn,omitempty"`
	WordCount      int                  `json:"wordCount"`
	MatchCount     int                  `json:"matchCount"`
	Groups         []matcher.MatchGroup `json:"groups,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"`
}
