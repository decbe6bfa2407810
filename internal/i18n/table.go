// Package i18n answers translation lookups at runtime. A Table holds one
// loaded catalog and a Translator stacks tables the way an application
// installs translators at startup.
package i18n

import (
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tskit/internal/domain"
)

type entry struct {
	text  string
	forms []string
}

// Table is an immutable lookup table built from a catalog.
type Table struct {
	lang    string
	tag     language.Tag
	entries map[string]entry
	// first active entry per context and source, whatever its comment
	sources map[string]entry
}

type tableOptions struct {
	skipUnfinished bool
}

type TableOption func(*tableOptions)

// WithoutUnfinished drops entries still marked unfinished, as lrelease
// does with -nounfinished.
func WithoutUnfinished() TableOption {
	return func(o *tableOptions) { o.skipUnfinished = true }
}

// NewTable indexes the messages of c that carry a usable translation.
// Obsolete, vanished and empty entries are left out so lookups fall back to
// the source text.
func NewTable(c *domain.Catalog, opts ...TableOption) *Table {
	var o tableOptions
	for _, opt := range opts {
		opt(&o)
	}
	t := &Table{entries: map[string]entry{}, sources: map[string]entry{}}
	if c == nil {
		return t
	}
	t.lang = c.Language
	if tag, err := language.Parse(trimEncoding(c.Language)); err == nil {
		t.tag = tag
	}
	for _, m := range c.Messages() {
		if m.Source == "" || !m.Status.Active() || !m.Translated() {
			continue
		}
		if o.skipUnfinished && (m.Status == domain.StatusUnfinished || m.Status == domain.StatusMachine) {
			continue
		}
		key := domain.MessageKey(m.Context, m.Source, m.Comment)
		if _, dup := t.entries[key]; dup {
			continue
		}
		e := entry{text: m.Translation}
		if m.Numerus {
			e.forms = append([]string(nil), m.NumerusForms...)
			e.text = firstNonEmpty(e.forms)
		}
		t.entries[key] = e
		src := domain.MessageKey(m.Context, m.Source, "")
		if _, seen := t.sources[src]; !seen {
			t.sources[src] = e
		}
	}
	return t
}

func (t *Table) Language() string { return t.lang }

func (t *Table) Len() int { return len(t.entries) }

func (t *Table) find(context, source, comment string) (entry, bool) {
	if e, ok := t.entries[domain.MessageKey(context, source, comment)]; ok {
		return e, true
	}
	if comment != "" {
		e, ok := t.entries[domain.MessageKey(context, source, "")]
		return e, ok
	}
	// a lookup without a comment still finds a source that only exists
	// disambiguated
	e, ok := t.sources[domain.MessageKey(context, source, "")]
	return e, ok
}

// Lookup returns the translation recorded for (context, source, comment).
// A miss with a comment retries without it. A miss without a comment takes
// the first entry of that source under any comment.
func (t *Table) Lookup(context, source, comment string) (string, bool) {
	e, ok := t.find(context, source, comment)
	if !ok {
		return "", false
	}
	return e.text, true
}

// Translate returns the translation of source, or source itself when the
// table has no entry for it.
func (t *Table) Translate(context, source string) string {
	if s, ok := t.Lookup(context, source, ""); ok {
		return s
	}
	return source
}

// LookupN selects the plural form for n using the CLDR rules of the table
// language and substitutes n for %n.
func (t *Table) LookupN(context, source, comment string, n int) (string, bool) {
	e, ok := t.find(context, source, comment)
	if !ok {
		return "", false
	}
	text := e.text
	if len(e.forms) > 0 {
		i := formIndex(plural.Cardinal.MatchPlural(t.tag, abs(n), 0, 0, 0, 0), len(e.forms))
		if e.forms[i] != "" {
			text = e.forms[i]
		}
	}
	return substituteCount(t.tag, text, n), true
}

// formIndex maps a CLDR plural category onto the numerus forms of a TS
// message, which are ordered from singular towards the most general plural.
func formIndex(f plural.Form, n int) int {
	var i int
	switch f {
	case plural.Zero, plural.One:
		i = 0
	case plural.Two, plural.Few:
		i = 1
	case plural.Many:
		i = 2
	default:
		i = n - 1
	}
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// substituteCount replaces %n with n and %Ln with n formatted for tag.
func substituteCount(tag language.Tag, s string, n int) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if strings.Contains(s, "%Ln") {
		s = strings.ReplaceAll(s, "%Ln", message.NewPrinter(tag).Sprintf("%d", n))
	}
	return strings.ReplaceAll(s, "%n", itoa(n))
}

func firstNonEmpty(ss []string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
