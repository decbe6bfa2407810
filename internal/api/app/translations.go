package app

import (
	"context"
	"fmt"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

type TranslationsAPI struct {
	repo  ports.TranslationRepository
	units ports.UnitRepository
}

func NewTranslationsAPI(repo ports.TranslationRepository, units ports.UnitRepository) *TranslationsAPI {
	return &TranslationsAPI{repo: repo, units: units}
}

type UpsertTranslationRequest struct {
	UnitID            int64    `json:"unit_id"`
	Locale            string   `json:"locale"`
	Text              string   `json:"text"`
	NumerusForms      []string `json:"numerus_forms"`
	TranslatorComment string   `json:"translator_comment"`
	Status            string   `json:"status"`
	ProviderID        *int64   `json:"provider_id"`
}

// Upsert stores a manual translation. An empty status means finished, or
// unfinished when no text is given.
func (a *TranslationsAPI) Upsert(ctx context.Context, req UpsertTranslationRequest) (bool, error) {
	status := domain.Status(req.Status)
	switch status {
	case "":
		status = domain.StatusFinished
		if req.Text == "" && len(req.NumerusForms) == 0 {
			status = domain.StatusUnfinished
		}
	case domain.StatusFinished, domain.StatusUnfinished, domain.StatusMachine, domain.StatusObsolete, domain.StatusVanished:
	default:
		return false, fmt.Errorf("unknown status %q", req.Status)
	}
	u, err := a.units.Get(ctx, req.UnitID)
	if err != nil {
		return false, fmt.Errorf("load unit %d: %w", req.UnitID, err)
	}
	t := &domain.Translation{
		UnitID:            u.ID,
		Locale:            req.Locale,
		Text:              req.Text,
		NumerusForms:      req.NumerusForms,
		TranslatorComment: req.TranslatorComment,
		Status:            status,
		ProviderID:        req.ProviderID,
	}
	if u.Numerus && len(t.NumerusForms) == 0 && t.Text != "" {
		t.NumerusForms = []string{t.Text}
	}
	return true, a.repo.Upsert(ctx, t)
}

type UnitText struct {
	UnitID      int64         `json:"unit_id"`
	Context     string        `json:"context"`
	Source      string        `json:"source"`
	Comment     string        `json:"comment"`
	Translation string        `json:"translation"`
	Status      domain.Status `json:"status"`
}

func (a *TranslationsAPI) ListUnitTexts(ctx context.Context, fileID int64, locale string) ([]*UnitText, error) {
	units, err := a.units.ListByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	trs, err := a.repo.ListByFileLocale(ctx, fileID, locale)
	if err != nil {
		return nil, err
	}
	byUnit := map[int64]*domain.Translation{}
	for _, t := range trs {
		byUnit[t.UnitID] = t
	}
	out := make([]*UnitText, 0, len(units))
	for _, u := range units {
		m := u.Message(byUnit[u.ID])
		text := m.Translation
		if m.Numerus && len(m.NumerusForms) > 0 {
			text = m.NumerusForms[len(m.NumerusForms)-1]
		}
		out = append(out, &UnitText{UnitID: u.ID, Context: u.Context, Source: u.SourceText, Comment: u.Comment, Translation: text, Status: m.Status})
	}
	return out, nil
}
