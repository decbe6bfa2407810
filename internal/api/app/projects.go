package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tskit/internal/domain"
	"tskit/internal/i18n"
	"tskit/internal/ports"
)

type ProjectAPI struct {
	repo ports.ProjectRepository
}

func NewProjectAPI(repo ports.ProjectRepository) *ProjectAPI { return &ProjectAPI{repo: repo} }

func (a *ProjectAPI) Create(ctx context.Context, name, sourceLang string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("project name is required")
	}
	if sourceLang != "" {
		norm, err := i18n.NormalizeLocale(sourceLang)
		if err != nil {
			return nil, err
		}
		sourceLang = norm
	}
	p := &domain.Project{Name: name, SourceLang: sourceLang}
	if err := a.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *ProjectAPI) List(ctx context.Context) ([]*domain.Project, error) {
	return a.repo.List(ctx)
}

// Resolve finds a project by numeric id or by name.
func (a *ProjectAPI) Resolve(ctx context.Context, ref string) (*domain.Project, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return a.repo.Get(ctx, id)
	}
	p, err := a.repo.GetByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("project %q not found", ref)
	}
	return p, nil
}

func (a *ProjectAPI) Update(ctx context.Context, id int64, name, sourceLang string) (*domain.Project, error) {
	p, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.SourceLang = sourceLang
	if err := a.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *ProjectAPI) Delete(ctx context.Context, id int64) (bool, error) {
	return true, a.repo.Delete(ctx, id)
}

func (a *ProjectAPI) AddLocale(ctx context.Context, projectID int64, locale string) (*domain.ProjectLocale, error) {
	norm, err := i18n.NormalizeLocale(locale)
	if err != nil {
		return nil, err
	}
	pl := &domain.ProjectLocale{ProjectID: projectID, Locale: norm}
	if err := a.repo.AddLocale(ctx, pl); err != nil {
		return nil, err
	}
	return pl, nil
}

func (a *ProjectAPI) ListLocales(ctx context.Context, projectID int64) ([]*domain.ProjectLocale, error) {
	return a.repo.ListLocales(ctx, projectID)
}
