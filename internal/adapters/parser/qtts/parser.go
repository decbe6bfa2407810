// Package qtts reads Qt Linguist TS translation files.
package qtts

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

type tsFile struct {
	XMLName        xml.Name    `xml:"TS"`
	Version        string      `xml:"version,attr"`
	Language       string      `xml:"language,attr"`
	SourceLanguage string      `xml:"sourcelanguage,attr"`
	Contexts       []tsContext `xml:"context"`
}

type tsContext struct {
	Name     string      `xml:"name"`
	Messages []tsMessage `xml:"message"`
}

type tsMessage struct {
	ID                string         `xml:"id,attr"`
	Numerus           string         `xml:"numerus,attr"`
	Locations         []tsLocation   `xml:"location"`
	Source            *string        `xml:"source"`
	OldSource         string         `xml:"oldsource"`
	Comment           string         `xml:"comment"`
	OldComment        string         `xml:"oldcomment"`
	ExtraComment      string         `xml:"extracomment"`
	TranslatorComment string         `xml:"translatorcomment"`
	Translation       *tsTranslation `xml:"translation"`
}

type tsTranslation struct {
	Type         string   `xml:"type,attr"`
	Text         string   `xml:",chardata"`
	NumerusForms []string `xml:"numerusform"`
}

type tsLocation struct {
	Filename *string `xml:"filename,attr"`
	Line     string  `xml:"line,attr"`
}

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "ts" }

func (p *Parser) Extensions() []string { return []string{".ts"} }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	data = stripBOM(data)
	data = byteElemRE.ReplaceAllFunc(data, encodeByteElem)
	var doc tsFile
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return ports.ParseResult{}, fmt.Errorf("invalid ts: %w", err)
	}
	cat := &domain.Catalog{
		Version:        doc.Version,
		Language:       doc.Language,
		SourceLanguage: doc.SourceLanguage,
	}
	locs := locationResolver{lines: map[string]int{}}
	for _, c := range doc.Contexts {
		name := restoreBytes(c.Name)
		if len(c.Messages) == 0 {
			cat.Contexts = append(cat.Contexts, &domain.Context{Name: name})
			continue
		}
		for i, tm := range c.Messages {
			if tm.Source == nil && tm.ID == "" {
				return ports.ParseResult{}, fmt.Errorf("context %q: message %d has no source", name, i+1)
			}
			m := &domain.Message{
				Context:           name,
				ID:                tm.ID,
				OldSource:         restoreBytes(tm.OldSource),
				Comment:           restoreBytes(tm.Comment),
				OldComment:        restoreBytes(tm.OldComment),
				ExtraComment:      restoreBytes(tm.ExtraComment),
				TranslatorComment: restoreBytes(tm.TranslatorComment),
				Numerus:           tm.Numerus == "yes",
				Status:            domain.StatusUnfinished,
			}
			if tm.Source != nil {
				m.Source = restoreBytes(*tm.Source)
			}
			for _, l := range tm.Locations {
				if loc, ok := locs.resolve(l); ok {
					m.Locations = append(m.Locations, loc)
				}
			}
			if tr := tm.Translation; tr != nil {
				m.Status = statusFromType(tr.Type)
				if m.Numerus {
					for _, f := range tr.NumerusForms {
						m.NumerusForms = append(m.NumerusForms, restoreBytes(f))
					}
				} else {
					m.Translation = restoreBytes(tr.Text)
				}
			}
			cat.Add(m)
		}
	}
	return ports.ParseResult{Catalog: cat, Locale: doc.Language}, nil
}

func statusFromType(typ string) domain.Status {
	switch typ {
	case "":
		return domain.StatusFinished
	case "obsolete":
		return domain.StatusObsolete
	case "vanished":
		return domain.StatusVanished
	default:
		return domain.StatusUnfinished
	}
}

// locationResolver turns lupdate's relative locations into absolute ones.
// An omitted filename refers to the previous location's file and a signed
// line is an offset from the last line seen in that file.
type locationResolver struct {
	file  string
	lines map[string]int
}

func (r *locationResolver) resolve(l tsLocation) (domain.Location, bool) {
	file := r.file
	if l.Filename != nil && *l.Filename != "" {
		file = *l.Filename
		r.file = file
	}
	if l.Line == "" {
		return domain.Location{Filename: file}, true
	}
	n, err := strconv.Atoi(l.Line)
	if err != nil {
		return domain.Location{}, false
	}
	if strings.HasPrefix(l.Line, "+") || strings.HasPrefix(l.Line, "-") {
		r.lines[file] += n
		n = r.lines[file]
	}
	return domain.Location{Filename: file, Line: n}, true
}

// lupdate writes control characters as <byte value="x1b"/> since XML 1.0
// cannot carry them. They are swapped for private-use markers before
// decoding and restored afterwards.
const (
	byteOpen  = "\uE000"
	byteClose = "\uE001"
)

var (
	byteElemRE   = regexp.MustCompile(`<byte\s+value="(x[0-9A-Fa-f]+|[0-9]+)"\s*/>`)
	byteMarkerRE = regexp.MustCompile(byteOpen + "([0-9a-f]+)" + byteClose)
)

func encodeByteElem(elem []byte) []byte {
	v := string(byteElemRE.FindSubmatch(elem)[1])
	var n uint64
	var err error
	if strings.HasPrefix(v, "x") {
		n, err = strconv.ParseUint(v[1:], 16, 32)
	} else {
		n, err = strconv.ParseUint(v, 10, 32)
	}
	if err != nil {
		return nil
	}
	return []byte(byteOpen + strconv.FormatUint(n, 16) + byteClose)
}

func restoreBytes(s string) string {
	if !strings.Contains(s, byteOpen) {
		return s
	}
	return byteMarkerRE.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.ParseUint(byteMarkerRE.FindStringSubmatch(m)[1], 16, 32)
		if err != nil {
			return ""
		}
		return string(rune(n))
	})
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
