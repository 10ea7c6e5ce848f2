package loadprompttemplate

import "docgen-workers/internal/models"

type Input struct {
	TemplateID string `json:"template_id"`
}

type Output struct {
	PromptTemplate *models.PromptTemplate `json:"prompt_template"`
	CacheHit       bool                   `json:"template_cache_hit"`
}
