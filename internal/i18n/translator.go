package i18n

import (
	"strconv"
	"sync"
)

// Translator consults installed tables from the most recently installed to
// the first. It is safe for concurrent use.
type Translator struct {
	mu     sync.RWMutex
	tables []*Table
}

func NewTranslator(tables ...*Table) *Translator {
	tr := &Translator{}
	for _, t := range tables {
		tr.Install(t)
	}
	return tr
}

// Install puts t in front of the tables already installed. Installing a
// table twice moves it to the front.
func (tr *Translator) Install(t *Table) {
	if t == nil {
		return
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.tables = append([]*Table{t}, without(tr.tables, t)...)
}

// Remove uninstalls t and reports whether it was installed.
func (tr *Translator) Remove(t *Table) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	rest := without(tr.tables, t)
	removed := len(rest) != len(tr.tables)
	tr.tables = rest
	return removed
}

// Language returns the language of the table consulted first.
func (tr *Translator) Language() string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	if len(tr.tables) == 0 {
		return ""
	}
	return tr.tables[0].Language()
}

func (tr *Translator) Translate(context, source string) string {
	return tr.TranslateDisambiguated(context, source, "")
}

func (tr *Translator) TranslateDisambiguated(context, source, comment string) string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	for _, t := range tr.tables {
		if s, ok := t.Lookup(context, source, comment); ok {
			return s
		}
	}
	return source
}

// TranslateN is the numerus variant of TranslateDisambiguated. On a miss the
// source is returned with %n replaced by n.
func (tr *Translator) TranslateN(context, source, comment string, n int) string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	for _, t := range tr.tables {
		if s, ok := t.LookupN(context, source, comment, n); ok {
			return s
		}
	}
	return substituteCount(untagged, source, n)
}

func without(tables []*Table, t *Table) []*Table {
	out := make([]*Table, 0, len(tables))
	for _, x := range tables {
		if x != t {
			out = append(out, x)
		}
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }
