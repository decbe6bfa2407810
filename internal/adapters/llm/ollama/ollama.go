// Package ollama talks to a local Ollama server.
package ollama

import (
	"context"
	"strings"
	"time"

	"tskit/internal/adapters/llm/httpclient"
	"tskit/internal/ports"
)

const DefaultBaseURL = "http://localhost:11434"

type Client struct {
	Model string
	base  *httpclient.Client
}

func New(baseURL, model string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{Model: model, base: httpclient.New(baseURL, timeout)}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

func (c *Client) Translate(ctx context.Context, _ ports.Segment, p ports.TranslateParams) (ports.TranslateResult, error) {
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: p.SystemPrompt},
			{Role: "user", Content: p.UserPrompt},
		},
		// Ask Ollama to produce valid JSON if supported by the model
		Format:  "json",
		Options: map[string]any{"temperature": p.Temperature},
	}
	var resp chatResponse
	r, err := c.base.R(ctx).SetBody(body).SetResult(&resp).Post(c.base.URL("/api/chat"))
	if err != nil {
		return ports.TranslateResult{}, err
	}
	if r.IsError() {
		return ports.TranslateResult{}, httpclient.StatusError("ollama translate", r)
	}
	content := strings.TrimSpace(resp.Message.Content)
	tr, err := httpclient.ExtractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	r, err := c.base.R(ctx).SetResult(&resp).Get(c.base.URL("/api/tags"))
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, httpclient.StatusError("ollama list models", r)
	}
	out := make([]ports.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		out = append(out, ports.ModelInfo{Name: m.Name})
	}
	return out, nil
}

func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}
