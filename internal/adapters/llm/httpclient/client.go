// Package httpclient is the resty-based transport shared by the LLM
// provider clients.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 60 * time.Second

type Client struct {
	BaseURL string
	http    *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().SetTimeout(timeout).SetHeader("Content-Type", "application/json")
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), http: c}
}

// R starts a request bound to ctx.
func (c *Client) R(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	return c.BaseURL + path
}

// StatusError describes a non-2xx response.
func StatusError(op string, r *resty.Response) error {
	return fmt.Errorf("%s: %s; body: %s", op, r.Status(), abbreviate(r.String(), 500))
}

var translationRE = regexp.MustCompile(`(?s)"translation"\s*:\s*("(?:[^"\\]|\\.)*")`)

// ExtractTranslation pulls the "translation" field out of a model answer.
// It accepts fenced code blocks, JSON surrounded by prose, truncated JSON and
// plain text answers.
func ExtractTranslation(content string) (string, error) {
	s := strings.TrimSpace(content)
	// If content contains fenced code, try to extract inner block
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := strings.TrimPrefix(s[idx+3:], "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = strings.TrimSpace(rest[:j])
		}
	}
	var obj struct {
		Translation *string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj.Translation != nil {
		return *obj.Translation, nil
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			if err := json.Unmarshal([]byte(s[i:j+1]), &obj); err == nil && obj.Translation != nil {
				return *obj.Translation, nil
			}
		}
	}
	if m := translationRE.FindStringSubmatch(s); len(m) == 2 {
		var t string
		if err := json.Unmarshal([]byte(m[1]), &t); err == nil {
			return t, nil
		}
	}
	// plain text answer when JSON mode was not respected
	if s != "" && !strings.Contains(s, "{") {
		lower := strings.ToLower(s)
		for _, k := range []string{"translation:", "translated:", "result:", "output:"} {
			if pos := strings.Index(lower, k); pos >= 0 && pos < 80 {
				if cand := strings.TrimSpace(s[pos+len(k):]); cand != "" {
					return cand, nil
				}
			}
		}
		return s, nil
	}
	return "", fmt.Errorf("failed to parse translation JSON; content: %s", abbreviate(s, 2000))
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
