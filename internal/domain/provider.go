package domain

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
)

// Provider is a configured machine translation backend.
type Provider struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"` // ollama | openrouter
	Name       string    `json:"name"`
	BaseURL    string    `json:"base_url"`
	Model      string    `json:"model"`
	APIKey     string    `json:"api_key"`
	OptionsRaw string    `json:"options_json"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ProviderOptions struct {
	Temperature    float64 `json:"temperature"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// Options decodes OptionsRaw; malformed or empty options yield zero values.
func (p *Provider) Options() ProviderOptions {
	var o ProviderOptions
	if strings.TrimSpace(p.OptionsRaw) == "" {
		return o
	}
	_ = json.Unmarshal([]byte(p.OptionsRaw), &o)
	return o
}

type ProviderModel struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"provider_id"`
	Name       string    `json:"name"`
	UpdatedAt  time.Time `json:"updated_at"`
}
