package jsoncatalog

import (
	"encoding/json"
	"fmt"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "json" }

func (e *Exporter) Extension() string { return ".json" }

// Export writes one object per context keyed by source. Inactive messages
// are skipped.
func (e *Exporter) Export(c *domain.Catalog, opts ports.ExportOptions) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("json export: nil catalog")
	}
	out := map[string]any{}
	if c.Language != "" {
		out["$language"] = c.Language
	}
	for _, m := range c.Messages() {
		if !m.Status.Active() {
			continue
		}
		entries, ok := out[m.Context].(map[string]string)
		if !ok {
			entries = map[string]string{}
			out[m.Context] = entries
		}
		v := m.Translation
		if m.Numerus && len(m.NumerusForms) > 0 {
			v = m.NumerusForms[len(m.NumerusForms)-1]
		}
		if v == "" && opts.Fallback {
			v = m.Source
		}
		entries[m.Source] = v
	}
	return json.MarshalIndent(out, "", "  ")
}
