package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const DefaultXAIURL = "https://api.x.ai/v1/chat/completions"

// XAIClient calls the x.ai Chat Completions API (OpenAI-compatible).
// See: https://docs.x.ai/api
type XAIClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewXAIClient creates an x.ai client. If apiKey is empty, it falls back
// to the XAI_API_KEY env var.
func NewXAIClient(apiKey, model, baseURL string, timeout time.Duration) (*XAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("XAI_API_KEY")
	}
	if baseURL == "" {
		baseURL = DefaultXAIURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &XAIClient{
		http:    &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
	}, nil
}

func (x *XAIClient) Name() string { return "xAI:" + x.model }
func (x *XAIClient) Close() error { return nil }

type xaiChatReq struct {
	Model       string       `json:"model"`
	Messages    []xaiMessage `json:"messages"`
	Temperature float32      `json:"temperature,omitempty"`
}
type xaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type xaiChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends system + user messages and returns the generated text.
// 4xx responses come back as PermanentError; transport failures and 5xx
// are plain errors so the retry middleware can act on them.
func (x *XAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := xaiChatReq{
		Model: x.model,
		Messages: []xaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	}
	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+x.apiKey)
	}

	resp, err := x.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		const max = 2048
		if len(body) > max {
			body = body[:max]
		}
		err := fmt.Errorf("xai: unexpected status %s: %s", resp.Status, string(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return "", NewPermanentError(resp.StatusCode, err)
		}
		return "", err
	}
	var out xaiChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
