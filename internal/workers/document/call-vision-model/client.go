package callvisionmodel

import (
	"context"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const completionsPath = "chat/completions"

// Poster is the part of *openai.Client the handler needs.
type Poster interface {
	Post(ctx context.Context, path string, params any, res any, opts ...option.RequestOption) error
}

// NewClient builds an openai-go client for any OpenAI-compatible endpoint.
func NewClient(cfg *Config) *openai.Client {
	opts := []option.RequestOption{
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}

	client := openai.NewClient(opts...)
	return &client
}
