package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	parreg "tskit/internal/adapters/parser/registry"
	"tskit/internal/domain"
	"tskit/internal/i18n"
	"tskit/internal/ports"
)

type Service struct {
	Files          ports.FileRepository
	Units          ports.UnitRepository
	Trans          ports.TranslationRepository
	Projects       ports.ProjectRepository
	ParserRegistry *parreg.Registry
}

func New(files ports.FileRepository, units ports.UnitRepository, trans ports.TranslationRepository, projects ports.ProjectRepository, reg *parreg.Registry) *Service {
	return &Service{Files: files, Units: units, Trans: trans, Projects: projects, ParserRegistry: reg}
}

type ImportArgs struct {
	ProjectID int64
	Filename  string
	Format    string // optional, detected from Filename
	Locale    string // optional, taken from the file
	Content   []byte
}

type ImportResult struct {
	FileID       int64
	Units        int
	Translations int
	Locale       string
}

func (s *Service) Import(ctx context.Context, in ImportArgs) (ImportResult, error) {
	parser, err := s.parserFor(in)
	if err != nil {
		return ImportResult{}, err
	}
	pr, err := parser.Parse(in.Content)
	if err != nil {
		return ImportResult{}, err
	}
	if err := i18n.Validate(pr.Catalog); err != nil {
		return ImportResult{}, err
	}
	locale := in.Locale
	if locale == "" {
		locale = pr.Locale
	}
	if norm, err := i18n.NormalizeLocale(locale); err == nil {
		locale = norm
	}

	sum := sha256.Sum256(in.Content)
	f := &domain.File{
		ProjectID: in.ProjectID,
		Path:      filepath.Base(in.Filename),
		Format:    parser.Format(),
		Locale:    locale,
		Hash:      hex.EncodeToString(sum[:]),
	}
	if err := s.Files.Create(ctx, f); err != nil {
		return ImportResult{}, fmt.Errorf("create file: %w", err)
	}

	msgs := pr.Catalog.Messages()
	units := make([]*domain.Unit, 0, len(msgs))
	for i, m := range msgs {
		units = append(units, domain.UnitFromMessage(f.ID, i, m))
	}
	if err := s.Units.UpsertBatch(ctx, units); err != nil {
		return ImportResult{}, fmt.Errorf("store units: %w", err)
	}

	res := ImportResult{FileID: f.ID, Units: len(units), Locale: locale}
	if locale == "" {
		return res, nil
	}
	for i, m := range msgs {
		if err := s.Trans.Upsert(ctx, domain.TranslationFromMessage(units[i].ID, locale, m)); err != nil {
			return res, fmt.Errorf("store translation %q: %w", m.Source, err)
		}
		if m.Translated() {
			res.Translations++
		}
	}
	if s.Projects != nil {
		if err := s.Projects.AddLocale(ctx, &domain.ProjectLocale{ProjectID: in.ProjectID, Locale: locale}); err != nil {
			return res, fmt.Errorf("add locale: %w", err)
		}
	}
	return res, nil
}

func (s *Service) parserFor(in ImportArgs) (ports.Parser, error) {
	if in.Format != "" {
		if p, ok := s.ParserRegistry.Get(in.Format); ok {
			return p, nil
		}
		return nil, errors.New("unsupported format: " + in.Format)
	}
	if p, ok := s.ParserRegistry.ForFile(in.Filename); ok {
		return p, nil
	}
	return nil, errors.New("cannot detect format of " + in.Filename)
}
