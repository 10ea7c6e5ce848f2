package buildvisionprompt

import (
	"fmt"
	"strings"

	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/models"
)

const narrativeLeadIn = "Here's all the information from my site visit:\n\n"

// EffectiveSystemPrompt drops every line that still holds an unresolved
// {placeholder}, i.e. any line containing both '{' and '}'.
func EffectiveSystemPrompt(systemPrompt string) string {
	lines := strings.Split(systemPrompt, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, "{") && strings.Contains(line, "}") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// Narrative is the user-turn text: lead-in, context, then the photo count
// sentence when there are photos.
func Narrative(ac *models.AssembledContext) string {
	photos := ""
	if ac.ImageCount > 0 {
		photos = fmt.Sprintf("I've also included %d photos from the site for your review.", ac.ImageCount)
	}
	return narrativeLeadIn + ac.AllTextContext + "\n\n" + photos
}

// BuildRequest merges template and context into a vision chat request.
func BuildRequest(cfg *Config, template *models.PromptTemplate, ac *models.AssembledContext) (*models.ChatRequest, error) {
	if template == nil {
		return nil, apperrors.NewTemplateInvalidError("template is missing")
	}
	if template.SystemPrompt == "" {
		return nil, apperrors.NewTemplateInvalidError("system_prompt is missing or empty")
	}
	if ac == nil {
		ac = &models.AssembledContext{}
	}

	blocks := []models.ContentBlock{models.TextBlock(Narrative(ac))}
	for _, img := range ac.Images {
		if img.URL == "" {
			continue
		}
		blocks = append(blocks, models.ImageBlock(img.URL, cfg.ImageDetail))
	}

	return &models.ChatRequest{
		Model: cfg.Model,
		Messages: []models.ChatMessage{
			{Role: models.RoleSystem, Content: models.TextContent(EffectiveSystemPrompt(template.SystemPrompt))},
			{Role: models.RoleUser, Content: models.BlockContent(blocks...)},
		},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, nil
}
