package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"tskit/internal/ports"
)

// ErrNotFound is returned when no translation file exists for a prefix.
var ErrNotFound = errors.New("translation file not found")

// Loader reads translation files named <prefix>_<locale><Ext> from FS.
type Loader struct {
	FS     fs.FS
	Parser ports.Parser
	Ext    string
}

// Load tries prefix_fr_FR, then prefix_fr, then prefix: the locale is
// shortened at its last '_' or '.' until a file exists. Each name is tried
// with Ext first and then without it.
func (l *Loader) Load(prefix, locale string, opts ...TableOption) (*Table, error) {
	for _, name := range l.candidates(prefix, locale) {
		t, err := l.LoadFile(name, opts...)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return t, err
	}
	return nil, fmt.Errorf("%w: %s for locale %q", ErrNotFound, prefix, locale)
}

// LoadFile parses a single file and builds its table.
func (l *Loader) LoadFile(name string, opts ...TableOption) (*Table, error) {
	data, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, err
	}
	res, err := l.Parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return NewTable(res.Catalog, opts...), nil
}

func (l *Loader) candidates(prefix, locale string) []string {
	var out []string
	add := func(base string) {
		if l.Ext != "" && !strings.HasSuffix(base, l.Ext) {
			out = append(out, base+l.Ext)
		}
		out = append(out, base)
	}
	loc := locale
	for loc != "" {
		add(prefix + "_" + loc)
		i := strings.LastIndexAny(loc, "_.")
		if i < 0 {
			break
		}
		loc = loc[:i]
	}
	add(prefix)
	return out
}
