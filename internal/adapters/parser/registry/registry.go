package registry

import (
	"path/filepath"
	"sort"
	"strings"

	csvparser "tskit/internal/adapters/parser/csv"
	"tskit/internal/adapters/parser/jsoncatalog"
	"tskit/internal/adapters/parser/qtts"
	"tskit/internal/ports"
)

type Registry struct {
	byFormat map[string]ports.Parser
	byExt    map[string]ports.Parser
}

func New() *Registry {
	return &Registry{byFormat: map[string]ports.Parser{}, byExt: map[string]ports.Parser{}}
}

// Default returns a registry holding every built-in parser.
func Default() *Registry {
	r := New()
	r.Register(qtts.New())
	r.Register(csvparser.New())
	r.Register(jsoncatalog.New())
	return r
}

func (r *Registry) Register(p ports.Parser) {
	r.byFormat[p.Format()] = p
	for _, ext := range p.Extensions() {
		r.byExt[strings.ToLower(ext)] = p
	}
}

func (r *Registry) Get(format string) (ports.Parser, bool) {
	p, ok := r.byFormat[format]
	return p, ok
}

// ForFile picks a parser from the extension of name.
func (r *Registry) ForFile(name string) (ports.Parser, bool) {
	p, ok := r.byExt[strings.ToLower(filepath.Ext(name))]
	return p, ok
}

func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
