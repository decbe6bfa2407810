package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "csv" }

func (e *Exporter) Extension() string { return ".csv" }

func (e *Exporter) Export(c *domain.Catalog, opts ports.ExportOptions) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("csv export: nil catalog")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	switch strings.TrimSpace(strings.ToLower(opts.Separator)) {
	case "semicolon":
		w.Comma = ';'
	case "tab":
		w.Comma = '\t'
	case "", "comma":
		w.Comma = ','
	default:
		return nil, fmt.Errorf("csv export: unknown separator %q", opts.Separator)
	}
	_ = w.Write([]string{"context", "source", "translation", "comment", "location", "status"})
	for _, m := range c.Messages() {
		v := m.Translation
		if m.Numerus && len(m.NumerusForms) > 0 {
			v = m.NumerusForms[len(m.NumerusForms)-1]
		}
		if v == "" && opts.Fallback {
			v = m.Source
		}
		_ = w.Write([]string{m.Context, m.Source, v, m.Comment, location(m.Locations), string(m.Status)})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func location(locs []domain.Location) string {
	if len(locs) == 0 {
		return ""
	}
	l := locs[0]
	if l.Line <= 0 {
		return l.Filename
	}
	return l.Filename + ":" + strconv.Itoa(l.Line)
}
