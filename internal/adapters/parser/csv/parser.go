package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "csv" }

func (p *Parser) Extensions() []string { return []string{".csv", ".tsv"} }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	data = stripBOM(data)
	r := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	r.Comma = sniffSeparator(data)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return ports.ParseResult{}, fmt.Errorf("read csv header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	// Support source column names
	srcIdx := column(idx, "source", "value", "text")
	if srcIdx == -1 {
		return ports.ParseResult{}, errors.New("csv missing source column (source/value/text)")
	}
	ctxIdx := column(idx, "context")
	trIdx := column(idx, "translation")
	cmtIdx := column(idx, "comment")
	locIdx := column(idx, "location")
	stIdx := column(idx, "status")

	cat := &domain.Catalog{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ports.ParseResult{}, err
		}
		src := field(rec, srcIdx)
		if src == "" {
			continue
		}
		m := &domain.Message{
			Context:     field(rec, ctxIdx),
			Source:      src,
			Comment:     field(rec, cmtIdx),
			Translation: field(rec, trIdx),
			Status:      domain.Status(strings.ToLower(field(rec, stIdx))),
		}
		if loc, ok := parseLocation(field(rec, locIdx)); ok {
			m.Locations = []domain.Location{loc}
		}
		if m.Status == "" {
			m.Status = domain.StatusFinished
			if m.Translation == "" {
				m.Status = domain.StatusUnfinished
			}
		}
		cat.Add(m)
	}
	return ports.ParseResult{Catalog: cat}, nil
}

func column(idx map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// parseLocation reads "file:line"; a value without a numeric suffix is a
// bare file name.
func parseLocation(s string) (domain.Location, bool) {
	if s == "" {
		return domain.Location{}, false
	}
	if i := strings.LastIndexByte(s, ':'); i > 0 {
		if n, err := strconv.Atoi(s[i+1:]); err == nil {
			return domain.Location{Filename: s[:i], Line: n}, true
		}
	}
	return domain.Location{Filename: s}, true
}

// sniffSeparator picks the separator used by the header line.
func sniffSeparator(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, n := ',', bytes.Count(line, []byte{','})
	for _, sep := range []rune{';', '\t'} {
		if c := bytes.Count(line, []byte(string(sep))); c > n {
			best, n = sep, c
		}
	}
	return best
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
