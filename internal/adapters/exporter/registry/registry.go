package registry

import (
	"path/filepath"
	"sort"
	"strings"

	csvexp "tskit/internal/adapters/exporter/csv"
	"tskit/internal/adapters/exporter/jsoncatalog"
	"tskit/internal/adapters/exporter/qtts"
	"tskit/internal/ports"
)

type Registry struct {
	byFormat map[string]ports.Exporter
	byExt    map[string]ports.Exporter
}

func New() *Registry {
	return &Registry{byFormat: map[string]ports.Exporter{}, byExt: map[string]ports.Exporter{}}
}

// Default returns a registry holding every built-in exporter.
func Default() *Registry {
	r := New()
	r.Register(qtts.New())
	r.Register(csvexp.New())
	r.Register(jsoncatalog.New())
	return r
}

func (r *Registry) Register(e ports.Exporter) {
	r.byFormat[e.Format()] = e
	r.byExt[strings.ToLower(e.Extension())] = e
}

func (r *Registry) Get(format string) (ports.Exporter, bool) {
	e, ok := r.byFormat[format]
	return e, ok
}

func (r *Registry) ForFile(name string) (ports.Exporter, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(name))]
	return e, ok
}

func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
