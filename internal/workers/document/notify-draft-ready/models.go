package notifydraftready

import (
	"time"

	"docgen-workers/internal/models"
)

const (
	ChannelSNS = "sns"
	ChannelSES = "ses"

	EventDraftReady = "draft.ready"
)

type Input struct {
	JobID         string `json:"job_id"`
	DocumentID    string `json:"document_id"`
	ReviewerEmail string `json:"reviewer_email,omitempty"`
}

type Output struct {
	Notification *models.DraftNotification `json:"notification"`
}

// DraftReadyEvent is the SNS message body.
type DraftReadyEvent struct {
	Event          string    `json:"event"`
	NotificationID string    `json:"notification_id"`
	JobID          string    `json:"job_id"`
	DocumentID     string    `json:"document_id"`
	ReviewURL      string    `json:"review_url,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
