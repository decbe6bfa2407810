package exporter

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	exreg "tskit/internal/adapters/exporter/registry"
	"tskit/internal/domain"
	"tskit/internal/ports"
)

type Service struct {
	Files ports.FileRepository
	Units ports.UnitRepository
	Trans ports.TranslationRepository
	Reg   *exreg.Registry
}

func New(files ports.FileRepository, units ports.UnitRepository, trans ports.TranslationRepository, reg *exreg.Registry) *Service {
	return &Service{Files: files, Units: units, Trans: trans, Reg: reg}
}

type ExportArgs struct {
	FileID         int64
	Locale         string // defaults to the locale the file was imported with
	Fallback       bool
	OverrideFormat string // optional
	Separator      string // csv only
}

type ExportResult struct {
	Filename string
	Content  []byte
}

// Catalog rebuilds the translation table of a file for one locale, with the
// messages in the order they were imported.
func (s *Service) Catalog(ctx context.Context, fileID int64, locale string) (*domain.Catalog, error) {
	units, err := s.Units.ListByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	trList, err := s.Trans.ListByFileLocale(ctx, fileID, locale)
	if err != nil {
		return nil, err
	}
	trByUnit := make(map[int64]*domain.Translation, len(trList))
	for _, t := range trList {
		trByUnit[t.UnitID] = t
	}
	c := &domain.Catalog{Language: locale}
	for _, u := range units {
		c.Add(u.Message(trByUnit[u.ID]))
	}
	return c, nil
}

func (s *Service) ExportFile(ctx context.Context, a ExportArgs) (ExportResult, error) {
	f, err := s.Files.Get(ctx, a.FileID)
	if err != nil {
		return ExportResult{}, err
	}
	format := f.Format
	if a.OverrideFormat != "" {
		format = a.OverrideFormat
	}
	exp, ok := s.Reg.Get(format)
	if !ok {
		return ExportResult{}, errors.New("no exporter for format: " + format)
	}
	locale := a.Locale
	if locale == "" {
		locale = f.Locale
	}
	c, err := s.Catalog(ctx, f.ID, locale)
	if err != nil {
		return ExportResult{}, err
	}
	content, err := exp.Export(c, ports.ExportOptions{Fallback: a.Fallback, Separator: a.Separator})
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Filename: exportName(f.Path, f.Locale, locale, exp.Extension()), Content: content}, nil
}

// exportName swaps the extension and, for tables named <prefix>_<locale>,
// the locale suffix of the imported file name.
func exportName(path, fromLocale, toLocale, ext string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if fromLocale != "" && toLocale != fromLocale {
		if stem, ok := strings.CutSuffix(base, "_"+fromLocale); ok {
			base = stem + "_" + toLocale
		} else if i := strings.LastIndex(base, "_"); i > 0 && strings.HasPrefix(fromLocale, base[i+1:]) {
			base = base[:i] + "_" + toLocale
		}
	}
	return base + ext
}
