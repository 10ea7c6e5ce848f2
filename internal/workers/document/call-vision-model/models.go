package callvisionmodel

import (
	"encoding/json"

	"docgen-workers/internal/models"
)

type Input struct {
	ChatRequest *models.ChatRequest `json:"chat_request"`
}

// Output carries the endpoint's response body untouched; the parser step
// validates it.
type Output struct {
	ChatResponse json.RawMessage `json:"chat_response"`
}
