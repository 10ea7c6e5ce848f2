package parsedraftresponse

import (
	"encoding/json"

	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/models"
)

// Variant selects whether the draft carries the job id.
type Variant int

const (
	Tagged Variant = iota
	Untagged
)

// DecodeResponse checks raw against the response schema and decodes it.
func DecodeResponse(raw []byte) (*models.ChatResponse, error) {
	if len(raw) == 0 {
		return nil, apperrors.NewModelResponseMalformedError("chat_response is missing")
	}

	result, err := responseSchema.ValidateBytes(raw)
	if err != nil {
		return nil, apperrors.NewModelResponseMalformedError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewModelResponseMalformedError(result.Summary())
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperrors.NewModelResponseMalformedError(err.Error())
	}
	return &resp, nil
}

// BuildDraft extracts the first choice and token usage. The template's
// includes_line_items flag is reserved; line items are always empty.
func BuildDraft(resp *models.ChatResponse, jobID string, variant Variant) *models.DraftDocument {
	doc := &models.DraftDocument{
		LineItemsJSON: []interface{}{},
		TokensUsed:    resp.Usage.TotalTokens,
		Status:        models.DraftStatus,
	}
	if content := resp.Choices[0].Message.Content; content != nil {
		doc.Markdown = *content
	}
	if variant == Tagged {
		doc.JobID = jobID
	}
	return doc
}
