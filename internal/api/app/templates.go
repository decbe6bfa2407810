package app

import (
	"context"
	"fmt"

	"tskit/internal/adapters/prompt"
	"tskit/internal/domain"
	"tskit/internal/ports"
)

type TemplateAPI struct{ repo ports.TemplateRepository }

func NewTemplateAPI(repo ports.TemplateRepository) *TemplateAPI { return &TemplateAPI{repo: repo} }

type SetTemplateRequest struct {
	Scope string `json:"scope"`
	RefID *int64 `json:"ref_id"`
	Type  string `json:"type"`
	Role  string `json:"role"`
	Body  string `json:"body"`
}

// Set stores a prompt override after checking that it parses.
func (a *TemplateAPI) Set(ctx context.Context, req SetTemplateRequest) (*domain.Template, error) {
	switch req.Scope {
	case domain.ScopeGlobal:
		req.RefID = nil
	case domain.ScopeProject, domain.ScopeProvider:
		if req.RefID == nil {
			return nil, fmt.Errorf("%s template needs a reference id", req.Scope)
		}
	default:
		return nil, fmt.Errorf("unknown template scope %q", req.Scope)
	}
	if req.Role != prompt.RoleSystem && req.Role != prompt.RoleUser {
		return nil, fmt.Errorf("unknown template role %q", req.Role)
	}
	if req.Type == "" {
		req.Type = prompt.TypeTranslateSingle
	}
	if err := prompt.Validate(req.Body); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	t := &domain.Template{Scope: req.Scope, RefID: req.RefID, Type: req.Type, Role: req.Role, Body: req.Body}
	if err := a.repo.Upsert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Effective returns the override used for a scope, or nil when the builtin
// prompt applies.
func (a *TemplateAPI) Effective(ctx context.Context, scope string, refID *int64, role string) (*domain.Template, error) {
	return a.repo.GetEffective(ctx, scope, refID, prompt.TypeTranslateSingle, role)
}
