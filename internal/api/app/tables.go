package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"tskit/internal/adapters/parser/qtts"
	parreg "tskit/internal/adapters/parser/registry"
	"tskit/internal/i18n"
)

// TableAPI works on translation files directly, without the database.
type TableAPI struct {
	fsys    fs.FS
	parsers *parreg.Registry
}

// NewTableAPI serves runtime tables from fsys, usually the translations
// directory.
func NewTableAPI(fsys fs.FS, parsers *parreg.Registry) *TableAPI {
	return &TableAPI{fsys: fsys, parsers: parsers}
}

type ValidateResult struct {
	Name     string       `json:"name"`
	Messages int          `json:"messages"`
	Issues   []i18n.Issue `json:"issues"`
}

// Validate parses content with the parser registered for name's extension
// and lists the consistency problems of the table.
func (a *TableAPI) Validate(name string, content []byte) (ValidateResult, error) {
	p, ok := a.parsers.ForFile(name)
	if !ok {
		return ValidateResult{}, fmt.Errorf("cannot detect format of %s", name)
	}
	res, err := p.Parse(content)
	if err != nil {
		return ValidateResult{}, fmt.Errorf("%s: %w", name, err)
	}
	out := ValidateResult{Name: name, Messages: res.Catalog.Len()}
	if err := i18n.Validate(res.Catalog); err != nil {
		var verr *i18n.ValidationError
		if !errors.As(err, &verr) {
			return ValidateResult{}, err
		}
		out.Issues = verr.Issues
	}
	return out, nil
}

// Locales lists the locales that have a <prefix>_<locale>.ts file.
func (a *TableAPI) Locales(prefix string) []string {
	names, _ := fs.Glob(a.fsys, prefix+"_*.ts")
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, strings.TrimSuffix(strings.TrimPrefix(n, prefix+"_"), ".ts"))
	}
	return out
}

// Translator loads the table of every prefix for locale. The first prefix
// is consulted first. A prefix without a file for locale falls back to the
// closest available locale, and is skipped when there is none.
func (a *TableAPI) Translator(prefixes []string, locale string, opts ...i18n.TableOption) (*i18n.Translator, error) {
	loader := &i18n.Loader{FS: a.fsys, Parser: qtts.New(), Ext: ".ts"}
	tr := i18n.NewTranslator()
	for i := len(prefixes) - 1; i >= 0; i-- {
		prefix := prefixes[i]
		t, err := loader.Load(prefix, locale, opts...)
		if errors.Is(err, i18n.ErrNotFound) {
			if alt, ok := i18n.MatchLocale(a.Locales(prefix), locale); ok {
				t, err = loader.Load(prefix, alt, opts...)
			}
		}
		if errors.Is(err, i18n.ErrNotFound) {
			log.Printf("tables: %v", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		tr.Install(t)
	}
	return tr, nil
}
