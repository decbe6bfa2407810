package domain

import "strings"

// Status is the translation state of a message as recorded in a TS file.
type Status string

const (
	StatusFinished   Status = "finished"
	StatusUnfinished Status = "unfinished"
	StatusObsolete   Status = "obsolete"
	StatusVanished   Status = "vanished"
	// StatusMachine marks machine output that still needs a translator's review.
	StatusMachine Status = "machine"
)

// Active reports whether a message with this status is still present in the
// sources it was extracted from.
func (s Status) Active() bool {
	return s != StatusObsolete && s != StatusVanished
}

type Location struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
}

// Message is one translation entry: a source string of a UI class and its
// localized replacement.
type Message struct {
	Context           string     `json:"context"`
	ID                string     `json:"id,omitempty"`
	Source            string     `json:"source"`
	OldSource         string     `json:"old_source,omitempty"`
	Comment           string     `json:"comment,omitempty"`
	OldComment        string     `json:"old_comment,omitempty"`
	ExtraComment      string     `json:"extra_comment,omitempty"`
	TranslatorComment string     `json:"translator_comment,omitempty"`
	Translation       string     `json:"translation"`
	Numerus           bool       `json:"numerus,omitempty"`
	NumerusForms      []string   `json:"numerus_forms,omitempty"`
	Status            Status     `json:"status"`
	Locations         []Location `json:"locations,omitempty"`
}

// Key returns the storage key of the message.
func (m *Message) Key() string { return MessageKey(m.Context, m.Source, m.Comment) }

// Translated reports whether the message carries any translated text.
func (m *Message) Translated() bool {
	if m.Numerus {
		for _, f := range m.NumerusForms {
			if f != "" {
				return true
			}
		}
		return false
	}
	return m.Translation != ""
}

type Context struct {
	Name     string     `json:"name"`
	Messages []*Message `json:"messages"`
}

// Catalog is an in-memory translation table for one target language.
type Catalog struct {
	Version        string     `json:"version"`
	Language       string     `json:"language"`
	SourceLanguage string     `json:"source_language,omitempty"`
	Contexts       []*Context `json:"contexts"`
}

// Add appends m to the context named m.Context, creating the context at the
// end of the catalog the first time it is seen.
func (c *Catalog) Add(m *Message) {
	for _, ctx := range c.Contexts {
		if ctx.Name == m.Context {
			ctx.Messages = append(ctx.Messages, m)
			return
		}
	}
	c.Contexts = append(c.Contexts, &Context{Name: m.Context, Messages: []*Message{m}})
}

// Messages returns every message in document order.
func (c *Catalog) Messages() []*Message {
	out := make([]*Message, 0, c.Len())
	for _, ctx := range c.Contexts {
		out = append(out, ctx.Messages...)
	}
	return out
}

func (c *Catalog) Len() int {
	n := 0
	for _, ctx := range c.Contexts {
		n += len(ctx.Messages)
	}
	return n
}

// Find returns the first message matching context, source and comment.
func (c *Catalog) Find(context, source, comment string) (*Message, bool) {
	for _, ctx := range c.Contexts {
		if ctx.Name != context {
			continue
		}
		for _, m := range ctx.Messages {
			if m.Source == source && m.Comment == comment {
				return m, true
			}
		}
	}
	return nil, false
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, "\x04", `\4`)

// MessageKey joins the identifying fields of a message with \x04. TS text
// may carry that byte through <byte value="x4"/>, so each field is escaped
// first and distinct messages never share a key.
func MessageKey(context, source, comment string) string {
	return keyEscaper.Replace(context) + "\x04" + keyEscaper.Replace(source) + "\x04" + keyEscaper.Replace(comment)
}
