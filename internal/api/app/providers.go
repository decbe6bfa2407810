package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"tskit/internal/adapters/llm/factory"
	llmreg "tskit/internal/adapters/llm/registry"
	"tskit/internal/domain"
	"tskit/internal/ports"
)

type ProviderAPI struct {
	repo    ports.ProviderRepository
	timeout time.Duration
}

func NewProviderAPI(repo ports.ProviderRepository, timeout time.Duration) *ProviderAPI {
	return &ProviderAPI{repo: repo, timeout: timeout}
}

// Build returns the client for a stored provider record.
func (a *ProviderAPI) Build(p *domain.Provider) (ports.Provider, error) {
	return factory.FromProvider(p, a.timeout)
}

func (a *ProviderAPI) Create(ctx context.Context, p domain.Provider) (*domain.Provider, error) {
	if p.Type == "" || p.Name == "" {
		return nil, errors.New("type and name are required")
	}
	if _, err := a.Build(&p); err != nil {
		return nil, err
	}
	// Normalize model identifiers where needed (e.g., OpenRouter)
	_ = a.normalizeModel(ctx, &p)
	if err := a.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	// mask API key when returning
	p.APIKey = mask(p.APIKey)
	return &p, nil
}

func (a *ProviderAPI) Update(ctx context.Context, p domain.Provider) (*domain.Provider, error) {
	if p.ID == 0 {
		return nil, errors.New("id is required")
	}
	// Preserve existing API key if masked or empty
	if strings.HasPrefix(p.APIKey, "****") || p.APIKey == "" {
		existing, err := a.repo.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.APIKey = existing.APIKey
	}
	_ = a.normalizeModel(ctx, &p)
	if err := a.repo.Update(ctx, &p); err != nil {
		return nil, err
	}
	p.APIKey = mask(p.APIKey)
	return &p, nil
}

func (a *ProviderAPI) List(ctx context.Context) ([]*domain.Provider, error) {
	list, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		p.APIKey = mask(p.APIKey)
	}
	return list, nil
}

type ModelInfo struct {
	Name, Description string
	ContextTokens     int
}

// ListModels queries the provider and refreshes the stored model list.
func (a *ProviderAPI) ListModels(ctx context.Context, id int64) ([]ModelInfo, error) {
	p, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prov, err := a.Build(p)
	if err != nil {
		return nil, err
	}
	models, err := prov.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ModelInfo, 0, len(models))
	names := make([]string, 0, len(models))
	for _, m := range models {
		out = append(out, ModelInfo{Name: m.Name, Description: m.Description, ContextTokens: m.ContextTokens})
		names = append(names, m.Name)
	}
	if err := a.repo.SaveModelCache(ctx, id, names); err != nil {
		return nil, err
	}
	return out, nil
}

// CachedModels returns the model names saved by the last ListModels call.
func (a *ProviderAPI) CachedModels(ctx context.Context, id int64) ([]string, error) {
	list, err := a.repo.ListModelCache(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.Name)
	}
	return out, nil
}

// ProviderTestResult contains details of a connectivity/translate test.
type ProviderTestResult struct {
	Ok          bool   `json:"ok"`
	Translation string `json:"translation,omitempty"`
	Raw         string `json:"raw,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Test performs a live translation of a short UI label to validate a
// provider. Translation failures are reported in the result.
func (a *ProviderAPI) Test(ctx context.Context, id int64) (ProviderTestResult, error) {
	p, err := a.repo.Get(ctx, id)
	if err != nil {
		return ProviderTestResult{}, err
	}
	_ = a.normalizeModel(ctx, p)
	prov, err := a.Build(p)
	if err != nil {
		return ProviderTestResult{}, err
	}
	system := "You are a professional software localization translator. Translate from en_US to fr_FR. Return only JSON: {\"translation\":\"...\"}."
	res, trErr := prov.Translate(ctx, ports.Segment{Key: "test", Text: "Quit", Context: "BaseLauncher"}, ports.TranslateParams{
		SourceLang:   "en_US",
		TargetLang:   "fr_FR",
		Model:        p.Model,
		SystemPrompt: system,
		UserPrompt:   "UI class: BaseLauncher\nsource: Quit",
	})
	if trErr != nil {
		return ProviderTestResult{Ok: false, Error: trErr.Error()}, nil
	}
	return ProviderTestResult{Ok: true, Translation: res.Translation, Raw: res.Raw}, nil
}

// HealthCheck pings every configured provider concurrently, keyed by name.
func (a *ProviderAPI) HealthCheck(ctx context.Context) (map[string]error, error) {
	list, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	reg := llmreg.New()
	for _, p := range list {
		prov, err := a.Build(p)
		if err != nil {
			reg.Register(p.Name, nil)
			continue
		}
		reg.Register(p.Name, prov)
	}
	return reg.HealthCheck(ctx), nil
}

// normalizeModel converts human-readable model labels to canonical IDs
// for providers that expose both (e.g., OpenRouter). It updates p.Model in place.
func (a *ProviderAPI) normalizeModel(ctx context.Context, p *domain.Provider) error {
	if p == nil || strings.ToLower(p.Type) != domain.ProviderOpenRouter {
		return nil
	}
	m := strings.TrimSpace(p.Model)
	// Heuristic: labels often contain spaces/parentheses; IDs rarely do.
	if m == "" || !strings.ContainsAny(m, " ()") {
		return nil
	}
	prov, err := a.Build(p)
	if err != nil {
		return err
	}
	models, err := prov.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, mi := range models {
		if strings.EqualFold(mi.Name, m) || strings.EqualFold(mi.Description, m) {
			p.Model = mi.Name
			return nil
		}
	}
	return nil
}

func (a *ProviderAPI) Delete(ctx context.Context, id int64) (bool, error) {
	if err := a.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func mask(s string) string {
	if len(s) <= 4 {
		return s
	}
	return "****" + s[len(s)-4:]
}
