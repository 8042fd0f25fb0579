// Package llm is the chat-model client used by the managed runtime. It
// speaks the OpenAI-compatible chat completions wire format and dispatches
// to the configured driver (ollama by default, openai for hosted models).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trailhead-ai/trailhead/internal/config"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Client calls a single configured chat model.
type Client struct {
	cfg    config.ModelConfig
	client *http.Client
}

func New(cfg config.ModelConfig) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

// Chat sends the conversation to the configured model and returns its reply.
func (c *Client) Chat(ctx context.Context, messages []models.ChatMessage) (*models.ChatResponse, error) {
	endpoint := c.cfg.Endpoint
	switch c.cfg.Driver {
	case "", "ollama":
		if endpoint == "" {
			endpoint = "http://localhost:11434"
		}
	case "openai":
		if endpoint == "" {
			endpoint = "https://api.openai.com"
		}
		if c.cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: api key not configured")
		}
	default:
		return nil, fmt.Errorf("unknown model driver %q", c.cfg.Driver)
	}

	body, _ := json.Marshal(chatRequest{Model: c.cfg.Model, Messages: messages})

	url := endpoint + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.cfg.Driver, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", c.cfg.Driver, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("%s: status %d: %s", c.cfg.Driver, httpResp.StatusCode, string(respBody))
	}

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", c.cfg.Driver, err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &models.ChatResponse{
		Provider: c.cfg.Driver,
		Model:    c.cfg.Model,
		Content:  content,
		Usage: models.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}
