package buildvisionprompt

import (
	"context"
	"encoding/json"
	"testing"

	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/common/logger"
	"docgen-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func createContext(allText string, urls ...string) *models.AssembledContext {
	ac := &models.AssembledContext{JobID: "J1", AllTextContext: allText, Images: []models.ImageEntry{}}
	for _, u := range urls {
		ac.Images = append(ac.Images, models.ImageEntry{URL: u})
	}
	ac.ImageCount = len(urls)
	return ac
}

func requireTemplateInvalid(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeTemplateInvalid, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

// ==========================
// System Prompt
// ==========================

func TestEffectiveSystemPrompt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"placeholder line removed", "Hello {name}\nWorld", "World"},
		{"only opening brace kept", "Use { carefully\nDone", "Use { carefully\nDone"},
		{"only closing brace kept", "a } b", "a } b"},
		{"braces in reverse order still removed", "x } then { y\nkeep", "keep"},
		{"trims surrounding whitespace", "\n  You are an inspector.  \n{client_concern}\n", "You are an inspector."},
		{"all lines removed", "{a}\n{b}", ""},
		{"no placeholders", "Line one\n\nLine three", "Line one\n\nLine three"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveSystemPrompt(tt.in))
		})
	}
}

// ==========================
// Narrative
// ==========================

func TestNarrative(t *testing.T) {
	t.Run("no photos", func(t *testing.T) {
		n := Narrative(createContext("NOTE: x"))
		assert.Equal(t, "Here's all the information from my site visit:\n\nNOTE: x\n\n", n)
		assert.NotContains(t, n, "photos")
	})

	t.Run("two photos", func(t *testing.T) {
		n := Narrative(createContext("IMAGE (OCR): A", "https://a", "https://b"))
		assert.Contains(t, n, "2 photos")
		assert.Equal(t, "Here's all the information from my site visit:\n\nIMAGE (OCR): A\n\nI've also included 2 photos from the site for your review.", n)
	})
}

// ==========================
// Request Building
// ==========================

func TestBuildRequest(t *testing.T) {
	cfg := LoadConfig()
	tmpl := &models.PromptTemplate{SystemPrompt: "You are a surveyor.\nProperty: {property_details}"}
	ac := createContext("IMAGE (OCR): A\n\nIMAGE (OCR): B", "https://cdn/1.jpg", "", "https://cdn/3.jpg")

	req, err := BuildRequest(cfg, tmpl, ac)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, 4000, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
	require.Len(t, req.Messages, 2)

	system := req.Messages[0]
	assert.Equal(t, "system", system.Role)
	assert.False(t, system.Content.IsBlocks())
	assert.Equal(t, "You are a surveyor.", system.Content.Text)

	user := req.Messages[1]
	assert.Equal(t, "user", user.Role)
	require.True(t, user.Content.IsBlocks())
	require.Len(t, user.Content.Blocks, 3, "image with empty url is skipped")
	assert.Equal(t, "text", user.Content.Blocks[0].Type)
	assert.Contains(t, user.Content.Blocks[0].Text, "3 photos")
	assert.Equal(t, models.ImageBlock("https://cdn/1.jpg", "high"), user.Content.Blocks[1])
	assert.Equal(t, models.ImageBlock("https://cdn/3.jpg", "high"), user.Content.Blocks[2])

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"model": "gpt-4o",
		"max_tokens": 4000,
		"temperature": 0.7,
		"messages": [
			{"role": "system", "content": "You are a surveyor."},
			{"role": "user", "content": [
				{"type": "text", "text": "Here's all the information from my site visit:\n\nIMAGE (OCR): A\n\nIMAGE (OCR): B\n\nI've also included 3 photos from the site for your review."},
				{"type": "image_url", "image_url": {"url": "https://cdn/1.jpg", "detail": "high"}},
				{"type": "image_url", "image_url": {"url": "https://cdn/3.jpg", "detail": "high"}}
			]}
		]
	}`, string(data))
}

func TestBuildRequest_TemplateErrors(t *testing.T) {
	cfg := LoadConfig()
	ac := createContext("x")

	_, err := BuildRequest(cfg, nil, ac)
	requireTemplateInvalid(t, err)

	_, err = BuildRequest(cfg, &models.PromptTemplate{IncludesLineItems: true}, ac)
	requireTemplateInvalid(t, err)
}

func TestBuildRequest_NilContext(t *testing.T) {
	req, err := BuildRequest(LoadConfig(), &models.PromptTemplate{SystemPrompt: "s"}, nil)
	require.NoError(t, err)
	assert.Len(t, req.Messages[1].Content.Blocks, 1)
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name        string
		template    string
		wantErr     bool
		wantSystem  string
		errContains string
	}{
		{name: "object template", template: `{"system_prompt":"Write it.","includes_line_items":false}`, wantSystem: "Write it."},
		{name: "wrapped template", template: `[{"system_prompt":"Hello {name}\nWorld"}]`, wantSystem: "World"},
		{name: "missing system_prompt", template: `{"includes_line_items":true}`, wantErr: true},
		{name: "absent template", template: ``, wantErr: true},
		{name: "empty list", template: `[]`, wantErr: true},
		{name: "undecodable template", template: `{"system_prompt": 3}`, wantErr: true},
	}

	h := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{
				PromptTemplate:   json.RawMessage(tt.template),
				AssembledContext: createContext("NOTE: hi"),
			})
			if tt.wantErr {
				requireTemplateInvalid(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSystem, out.ChatRequest.Messages[0].Content.Text)
		})
	}
}

func TestInput_DecodesProcessVariables(t *testing.T) {
	vars := `{
		"prompt_template": [{"system_prompt": "S", "includes_line_items": true}],
		"assembled_context": {"job_id": "J1", "images": [{"url": "https://a", "analysis": "", "timestamp": ""}], "image_count": 1, "all_text_context": "IMAGE (OCR): No text extracted"}
	}`
	var input Input
	require.NoError(t, json.Unmarshal([]byte(vars), &input))

	out, err := createTestHandler(t).Execute(context.Background(), &input)
	require.NoError(t, err)
	assert.Len(t, out.ChatRequest.Messages[1].Content.Blocks, 2)
}
