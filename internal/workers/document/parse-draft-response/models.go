package parsedraftresponse

import (
	"encoding/json"

	"docgen-workers/internal/models"
)

// Input for both parser variants. The untagged variant ignores job ids.
type Input struct {
	ChatResponse     json.RawMessage `json:"chat_response"`
	PromptTemplate   json.RawMessage `json:"prompt_template"`
	AssembledContext *struct {
		JobID string `json:"job_id"`
	} `json:"assembled_context,omitempty"`
	JobID string `json:"job_id,omitempty"`
}

// jobID prefers the id carried by the assembled context.
func (in *Input) jobID() string {
	if in.AssembledContext != nil && in.AssembledContext.JobID != "" {
		return in.AssembledContext.JobID
	}
	return in.JobID
}

type Output struct {
	DraftDocument *models.DraftDocument `json:"draft_document"`
}
