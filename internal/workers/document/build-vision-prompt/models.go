package buildvisionprompt

import (
	"encoding/json"

	"docgen-workers/internal/models"
)

// Input carries the raw template lookup result and the assembled context.
type Input struct {
	PromptTemplate   json.RawMessage          `json:"prompt_template"`
	AssembledContext *models.AssembledContext `json:"assembled_context"`
}

type Output struct {
	ChatRequest *models.ChatRequest `json:"chat_request"`
}
