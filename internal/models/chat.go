package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"

	ContentTypeText     = "text"
	ContentTypeImageURL = "image_url"
)

// ChatRequest is an OpenAI-style chat completions request body.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type ChatMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// MessageContent is either a plain string or an ordered list of blocks.
// Exactly one form is set.
type MessageContent struct {
	Text   string
	Blocks []ContentBlock
}

func TextContent(s string) MessageContent {
	return MessageContent{Text: s}
}

func BlockContent(blocks ...ContentBlock) MessageContent {
	if blocks == nil {
		blocks = []ContentBlock{}
	}
	return MessageContent{Blocks: blocks}
}

// IsBlocks reports whether the content is the list form.
func (c MessageContent) IsBlocks() bool {
	return c.Blocks != nil
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Blocks != nil {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = MessageContent{}
		return nil
	case data[0] == '[':
		var blocks []ContentBlock
		if err := json.Unmarshal(data, &blocks); err != nil {
			return fmt.Errorf("decode content blocks: %w", err)
		}
		if blocks == nil {
			blocks = []ContentBlock{}
		}
		*c = MessageContent{Blocks: blocks}
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode content string: %w", err)
		}
		*c = MessageContent{Text: s}
		return nil
	}
}

// ContentBlock is a text or image_url entry in a user turn.
type ContentBlock struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentTypeText, Text: text}
}

func ImageBlock(url, detail string) ContentBlock {
	return ContentBlock{Type: ContentTypeImageURL, ImageURL: &ImageURL{URL: url, Detail: detail}}
}

// ChatResponse holds the fields read from a chat completions response.
type ChatResponse struct {
	ID      string       `json:"id,omitempty"`
	Model   string       `json:"model,omitempty"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

type ChatChoice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

type ResponseMessage struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens"`
}

// UnmarshalJSON accepts integral floats such as 10.0 for token counts.
func (u *ChatUsage) UnmarshalJSON(data []byte) error {
	var raw struct {
		PromptTokens     json.Number `json:"prompt_tokens"`
		CompletionTokens json.Number `json:"completion_tokens"`
		TotalTokens      json.Number `json:"total_tokens"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	if u.PromptTokens, err = tokenCount(raw.PromptTokens); err != nil {
		return fmt.Errorf("prompt_tokens: %w", err)
	}
	if u.CompletionTokens, err = tokenCount(raw.CompletionTokens); err != nil {
		return fmt.Errorf("completion_tokens: %w", err)
	}
	if u.TotalTokens, err = tokenCount(raw.TotalTokens); err != nil {
		return fmt.Errorf("total_tokens: %w", err)
	}
	return nil
}

func tokenCount(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s is not a whole number", n)
	}
	return int(f), nil
}
