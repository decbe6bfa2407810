// Package qtts writes catalogs in the layout lupdate produces, so that files
// round-trip through Qt Linguist without spurious diffs.
package qtts

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

const defaultVersion = "2.1"

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "ts" }

func (e *Exporter) Extension() string { return ".ts" }

func (e *Exporter) Export(c *domain.Catalog, _ ports.ExportOptions) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("ts export: nil catalog")
	}
	var b bytes.Buffer
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<!DOCTYPE TS>\n")
	version := c.Version
	if version == "" {
		version = defaultVersion
	}
	fmt.Fprintf(&b, "<TS version=\"%s\"", protect(version))
	if c.Language != "" {
		fmt.Fprintf(&b, " language=\"%s\"", protect(c.Language))
	}
	if c.SourceLanguage != "" {
		fmt.Fprintf(&b, " sourcelanguage=\"%s\"", protect(c.SourceLanguage))
	}
	b.WriteString(">\n")
	for _, ctx := range c.Contexts {
		b.WriteString("<context>\n")
		writeElem(&b, 1, "name", ctx.Name)
		for _, m := range ctx.Messages {
			writeMessage(&b, m)
		}
		b.WriteString("</context>\n")
	}
	b.WriteString("</TS>\n")
	return b.Bytes(), nil
}

func writeMessage(b *bytes.Buffer, m *domain.Message) {
	indent(b, 1)
	b.WriteString("<message")
	if m.ID != "" {
		fmt.Fprintf(b, " id=\"%s\"", protect(m.ID))
	}
	if m.Numerus {
		b.WriteString(" numerus=\"yes\"")
	}
	b.WriteString(">\n")
	for _, l := range m.Locations {
		indent(b, 2)
		fmt.Fprintf(b, "<location filename=\"%s\"", protect(l.Filename))
		if l.Line > 0 {
			fmt.Fprintf(b, " line=\"%s\"", strconv.Itoa(l.Line))
		}
		b.WriteString("/>\n")
	}
	writeElem(b, 2, "source", m.Source)
	writeOptional(b, "oldsource", m.OldSource)
	writeOptional(b, "comment", m.Comment)
	writeOptional(b, "oldcomment", m.OldComment)
	writeOptional(b, "extracomment", m.ExtraComment)
	writeOptional(b, "translatorcomment", m.TranslatorComment)

	indent(b, 2)
	b.WriteString("<translation")
	if typ := typeAttr(m.Status); typ != "" {
		fmt.Fprintf(b, " type=\"%s\"", typ)
	}
	b.WriteString(">")
	if m.Numerus {
		b.WriteString("\n")
		forms := m.NumerusForms
		if len(forms) == 0 {
			forms = []string{""}
		}
		for _, f := range forms {
			writeElem(b, 3, "numerusform", f)
		}
		indent(b, 2)
	} else {
		b.WriteString(protect(m.Translation))
	}
	b.WriteString("</translation>\n")
	indent(b, 1)
	b.WriteString("</message>\n")
}

func typeAttr(s domain.Status) string {
	switch s {
	case domain.StatusFinished, "":
		return ""
	case domain.StatusObsolete:
		return "obsolete"
	case domain.StatusVanished:
		return "vanished"
	default:
		return "unfinished"
	}
}

func writeOptional(b *bytes.Buffer, name, text string) {
	if text != "" {
		writeElem(b, 2, name, text)
	}
}

func writeElem(b *bytes.Buffer, depth int, name, text string) {
	indent(b, depth)
	fmt.Fprintf(b, "<%s>%s</%s>\n", name, protect(text), name)
}

func indent(b *bytes.Buffer, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
}

// protect escapes text the way lupdate does.
func protect(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
				fmt.Fprintf(&b, "<byte value=\"x%x\"/>", r)
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
