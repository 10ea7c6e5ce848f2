package savedraftdocument

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// RenderPreview converts draft markdown to HTML for the review screen.
func RenderPreview(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
