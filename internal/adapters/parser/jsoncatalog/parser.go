package jsoncatalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

// MetaLanguage is the metadata key carrying the catalog language.
const MetaLanguage = "$language"

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "json" }

func (p *Parser) Extensions() []string { return []string{".json"} }

// Parse reads { "$language": "fr_FR", "<context>": { "<source>": "<translation>" } }.
// Contexts and sources are sorted since JSON objects carry no order.
func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	// Strip UTF-8 BOM if present
	data = stripBOM(data)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ports.ParseResult{}, fmt.Errorf("invalid json: %w", err)
	}
	cat := &domain.Catalog{}
	if v, ok := raw[MetaLanguage]; ok {
		if err := json.Unmarshal(v, &cat.Language); err != nil {
			return ports.ParseResult{}, fmt.Errorf("invalid %s: %w", MetaLanguage, err)
		}
	}
	names := make([]string, 0, len(raw))
	for k := range raw {
		// Ignore metadata fields like $schema
		if len(k) > 0 && k[0] == '$' {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		var entries map[string]string
		if err := json.Unmarshal(raw[name], &entries); err != nil {
			return ports.ParseResult{}, fmt.Errorf("context %q: %w", name, err)
		}
		sources := make([]string, 0, len(entries))
		for s := range entries {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		for _, s := range sources {
			m := &domain.Message{Context: name, Source: s, Translation: entries[s], Status: domain.StatusFinished}
			if m.Translation == "" {
				m.Status = domain.StatusUnfinished
			}
			cat.Add(m)
		}
	}
	return ports.ParseResult{Catalog: cat, Locale: cat.Language}, nil
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
