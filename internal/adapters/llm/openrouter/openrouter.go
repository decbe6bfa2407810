// Package openrouter talks to the OpenRouter chat completions API.
package openrouter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"tskit/internal/adapters/llm/httpclient"
	"tskit/internal/ports"
)

const DefaultBaseURL = "https://openrouter.ai"

type Client struct {
	APIKey string
	Model  string
	base   *httpclient.Client
}

func New(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{APIKey: apiKey, Model: model, base: httpclient.New(apiURL(baseURL), timeout)}
}

// apiURL accepts a base with or without the /api/v1 suffix.
func apiURL(base string) string {
	b := strings.TrimRight(base, "/")
	if idx := strings.Index(b, "/api/v1"); idx >= 0 {
		return b[:idx+len("/api/v1")]
	}
	return b + "/api/v1"
}

var translationSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "translation",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"translation": map[string]any{"type": "string"},
			},
			"required":             []string{"translation"},
			"additionalProperties": false,
		},
	},
}

type completion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Translate(ctx context.Context, _ ports.Segment, p ports.TranslateParams) (ports.TranslateResult, error) {
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": p.SystemPrompt},
			{"role": "user", "content": p.UserPrompt},
		},
		"temperature":     p.Temperature,
		"response_format": translationSchema,
	}
	resp, err := c.complete(ctx, body)
	var status *statusErr
	if errors.As(err, &status) && status.code == http.StatusBadRequest {
		// models without structured output support reject json_schema
		body["response_format"] = map[string]string{"type": "json_object"}
		resp, err = c.complete(ctx, body)
	}
	if err != nil {
		return ports.TranslateResult{}, err
	}
	if len(resp.Choices) == 0 {
		return ports.TranslateResult{}, errors.New("openrouter translate: no choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	tr, err := httpclient.ExtractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

type statusErr struct {
	code int
	err  error
}

func (e *statusErr) Error() string { return e.err.Error() }

func (c *Client) complete(ctx context.Context, body map[string]any) (*completion, error) {
	var resp completion
	r, err := c.request(ctx).SetBody(body).SetResult(&resp).Post(c.base.URL("/chat/completions"))
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, &statusErr{code: r.StatusCode(), err: httpclient.StatusError("openrouter translate", r)}
	}
	return &resp, nil
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	var resp struct {
		Data []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			ContextLength int    `json:"context_length"`
		} `json:"data"`
	}
	r, err := c.request(ctx).SetResult(&resp).Get(c.base.URL("/models"))
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, httpclient.StatusError("openrouter list models", r)
	}
	out := make([]ports.ModelInfo, 0, len(resp.Data))
	for _, d := range resp.Data {
		label := d.Name
		if label == "" {
			label = d.ID
		}
		out = append(out, ports.ModelInfo{Name: d.ID, Description: label, ContextTokens: d.ContextLength})
	}
	return out, nil
}

func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.base.R(ctx).
		SetHeader("Authorization", "Bearer "+c.APIKey).
		SetHeader("X-Title", "tskit")
}
