package app

import (
	"context"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

type FileAPI struct{ repo ports.FileRepository }

func NewFileAPI(repo ports.FileRepository) *FileAPI { return &FileAPI{repo: repo} }

func (a *FileAPI) ListByProject(ctx context.Context, projectID int64) ([]*domain.File, error) {
	return a.repo.ListByProject(ctx, projectID)
}

func (a *FileAPI) Get(ctx context.Context, id int64) (*domain.File, error) {
	return a.repo.Get(ctx, id)
}

func (a *FileAPI) Delete(ctx context.Context, id int64) (bool, error) {
	// ensure exists
	if _, err := a.repo.Get(ctx, id); err != nil {
		return false, err
	}
	if err := a.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}
