package savedraftdocument

import (
	"time"

	"docgen-workers/internal/models"
)

type Input struct {
	JobID         string                `json:"job_id"`
	DraftDocument *models.DraftDocument `json:"draft_document"`
}

type Output struct {
	StoredDraft *models.StoredDraft `json:"stored_draft"`
}

// indexedDraft is the search document written per saved draft.
type indexedDraft struct {
	DocumentID string    `json:"document_id"`
	JobID      string    `json:"job_id"`
	Markdown   string    `json:"markdown"`
	TokensUsed int       `json:"tokens_used"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
