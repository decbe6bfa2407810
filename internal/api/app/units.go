package app

import (
	"context"
	"errors"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

type UnitAPI struct{ repo ports.UnitRepository }

func NewUnitAPI(repo ports.UnitRepository) *UnitAPI { return &UnitAPI{repo: repo} }

func (a *UnitAPI) ListByFile(ctx context.Context, fileID int64) ([]*domain.Unit, error) {
	return a.repo.ListByFile(ctx, fileID)
}

type UpsertItem struct {
	Context      string `json:"context"`
	Source       string `json:"source"`
	Comment      string `json:"comment"`
	ExtraComment string `json:"extra_comment"`
}

// UpsertBatch appends new units to a file and refreshes the developer notes
// of existing ones. Units are matched by context, source and comment.
func (a *UnitAPI) UpsertBatch(ctx context.Context, fileID int64, items []UpsertItem) (int, error) {
	if fileID == 0 {
		return 0, errors.New("file_id required")
	}
	existing, err := a.repo.ListByFile(ctx, fileID)
	if err != nil {
		return 0, err
	}
	byKey := make(map[string]*domain.Unit, len(existing))
	next := 0
	for _, u := range existing {
		byKey[u.Key] = u
		if u.Position >= next {
			next = u.Position + 1
		}
	}
	ups := make([]*domain.Unit, 0, len(items))
	for _, it := range items {
		if it.Source == "" {
			return 0, errors.New("source required")
		}
		m := &domain.Message{Context: it.Context, Source: it.Source, Comment: it.Comment, ExtraComment: it.ExtraComment}
		u, ok := byKey[m.Key()]
		if !ok {
			u = domain.UnitFromMessage(fileID, next, m)
			byKey[u.Key] = u
			next++
		} else if it.ExtraComment != "" {
			u.ExtraComment = it.ExtraComment
		}
		ups = append(ups, u)
	}
	if err := a.repo.UpsertBatch(ctx, ups); err != nil {
		return 0, err
	}
	return len(ups), nil
}
