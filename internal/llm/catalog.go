package llm

import (
	"context"
	"fmt"
	"time"
)

// NewClient builds the provider selected by name. Known providers:
// "xai" (default backend, OpenAI-compatible HTTP), "gemini", "fake".
func NewClient(ctx context.Context, provider, apiKey, model, baseURL string, timeout time.Duration) (TextClient, error) {
	switch provider {
	case "", "xai", "grok":
		return NewXAIClient(apiKey, model, baseURL, timeout)
	case "gemini":
		return NewGeminiClient(ctx, apiKey, model)
	case "fake":
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}
