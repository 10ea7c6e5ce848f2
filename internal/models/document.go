package models

import "time"

const DraftStatus = "draft"

// DraftDocument is the parsed model output. JobID is empty for the untagged
// parser and then omitted from JSON.
type DraftDocument struct {
	JobID         string        `json:"job_id,omitempty"`
	Markdown      string        `json:"markdown"`
	LineItemsJSON []interface{} `json:"line_items_json"`
	TokensUsed    int           `json:"tokens_used"`
	Status        string        `json:"status"`
}

// StoredDraft is what the saver reports back to the process.
type StoredDraft struct {
	DocumentID string    `json:"document_id"`
	JobID      string    `json:"job_id"`
	Status     string    `json:"status"`
	SavedAt    time.Time `json:"saved_at"`
	Indexed    bool      `json:"indexed"`
}

// DraftNotification records a "draft ready" announcement.
type DraftNotification struct {
	NotificationID string    `json:"notification_id"`
	Channels       []string  `json:"channels"`
	SentAt         time.Time `json:"sent_at"`
}
