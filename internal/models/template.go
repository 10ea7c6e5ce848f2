package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PromptTemplate is a reusable system prompt plus the line-item flag.
type PromptTemplate struct {
	ID                string `json:"id,omitempty"`
	SystemPrompt      string `json:"system_prompt"`
	IncludesLineItems bool   `json:"includes_line_items"`
}

// NormalizeTemplate decodes template data that arrives either as an object or
// wrapped in a one-element array. Absent data (empty, null, empty array)
// yields a nil template and no error.
func NormalizeTemplate(raw json.RawMessage) (*PromptTemplate, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode template list: %w", err)
		}
		if len(items) == 0 {
			return nil, nil
		}
		return NormalizeTemplate(items[0])
	}

	var t PromptTemplate
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	return &t, nil
}
