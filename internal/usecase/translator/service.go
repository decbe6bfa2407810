package translator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"tskit/internal/adapters/prompt"
	"tskit/internal/domain"
	"tskit/internal/ports"
)

type Deps struct {
	Providers ports.ProviderRepository
	Cache     ports.CacheRepository
	Prompt    ports.PromptRenderer
	// BuildProvider should return a concrete ports.Provider for a given provider record
	BuildProvider func(*domain.Provider) (ports.Provider, error)
}

type Service struct {
	d       Deps
	retries int
	backoff time.Duration
}

func New(d Deps) *Service { return &Service{d: d, retries: 3, backoff: 200 * time.Millisecond} }

type TranslateArgs struct {
	ProviderID     int64
	Unit           *domain.Unit
	Project        string
	SourceLang     string
	TargetLang     string
	Model          string
	SystemOverride string
	UserOverride   string
	BypassCache    bool
}

// TranslateOne machine-translates the source text of a unit. Placeholders
// and markup are masked before prompting and must all come back.
func (s *Service) TranslateOne(ctx context.Context, a TranslateArgs) (string, error) {
	if a.Unit == nil {
		return "", errors.New("unit is required")
	}
	prov, err := s.d.Providers.Get(ctx, a.ProviderID)
	if err != nil {
		return "", fmt.Errorf("load provider %d: %w", a.ProviderID, err)
	}
	model := a.Model
	if model == "" {
		model = prov.Model
	}
	placeholders := ExtractPlaceholders(a.Unit.SourceText)
	tags := ExtractTags(a.Unit.SourceText)
	masked, unmask := maskTokens(a.Unit.SourceText, placeholders, tags)

	locs := make([]string, 0, len(a.Unit.Locations))
	for _, l := range a.Unit.Locations {
		locs = append(locs, fmt.Sprintf("%s:%d", l.Filename, l.Line))
	}
	data := ports.PromptData{
		SrcLang:        a.SourceLang,
		TgtLang:        a.TargetLang,
		Key:            a.Unit.Key,
		Text:           masked,
		Project:        a.Project,
		Context:        a.Unit.Context,
		Disambiguation: a.Unit.Comment,
		DeveloperNote:  a.Unit.ExtraComment,
		Locations:      locs,
		Placeholders:   maskedNames(len(placeholders), "PH"),
		Tags:           maskedNames(len(tags), "TAG"),
	}

	system, user := a.SystemOverride, a.UserOverride
	if system == "" {
		if system, err = s.d.Prompt.Render(ctx, domain.ScopeProvider, &prov.ID, prompt.TypeTranslateSingle, prompt.RoleSystem, data); err != nil {
			return "", err
		}
	}
	if user == "" {
		if user, err = s.d.Prompt.Render(ctx, domain.ScopeProvider, &prov.ID, prompt.TypeTranslateSingle, prompt.RoleUser, data); err != nil {
			return "", err
		}
	}

	key := domain.CacheKey{Text: masked, SourceLang: a.SourceLang, TargetLang: a.TargetLang, Provider: prov.Type, Model: model}
	if !a.BypassCache {
		if ce, _ := s.d.Cache.Get(ctx, key); ce != nil {
			return restore(a.Unit.SourceText, ce.Translation, unmask, placeholders, tags)
		}
	}

	if s.d.BuildProvider == nil {
		return "", errors.New("translate: provider builder missing")
	}
	adapter, err := s.d.BuildProvider(prov)
	if err != nil {
		return "", err
	}
	segment := ports.Segment{Key: a.Unit.Key, Text: masked, Context: a.Unit.Context, Placeholders: data.Placeholders, Tags: data.Tags}
	params := ports.TranslateParams{
		SourceLang:   a.SourceLang,
		TargetLang:   a.TargetLang,
		Model:        model,
		Temperature:  prov.Options().Temperature,
		SystemPrompt: system,
		UserPrompt:   user,
	}
	var res ports.TranslateResult
	for attempt := 1; ; attempt++ {
		res, err = adapter.Translate(ctx, segment, params)
		if err == nil {
			break
		}
		// Retry only on parse/formatting errors that models often flake on
		if !isRetryableTranslateError(err) || attempt >= s.retries {
			return "", err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * s.backoff):
		}
	}
	rawMasked := strings.TrimSpace(res.Translation)
	translated, err := restore(a.Unit.SourceText, rawMasked, unmask, placeholders, tags)
	if err != nil {
		return "", err
	}
	_ = s.d.Cache.Put(ctx, &domain.CacheEntry{CacheKey: key, Translation: rawMasked})
	return translated, nil
}

// restore turns masked model output back into the text stored for src.
// Cached and fresh output go through the same path.
func restore(src, rawMasked string, unmask func(string) string, placeholders, tags []string) (string, error) {
	translated := keepEdgeSpaces(src, unmask(strings.TrimSpace(rawMasked)))
	for _, ph := range placeholders {
		if !strings.Contains(translated, ph) {
			return "", fmt.Errorf("placeholder missing in translation: %s", ph)
		}
	}
	for _, tg := range tags {
		if !strings.Contains(translated, tg) {
			return "", fmt.Errorf("tag missing in translation: %s", tg)
		}
	}
	return translated, nil
}

// Qt argument markers: %1 to %99, their localized %L1 form, and the numerus
// count %n / %Ln.
var placeholderRE = regexp.MustCompile(`%L?(?:[1-9][0-9]?|n)`)

// Rich text tags such as <b>, </i> and <br/>.
var tagRE = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9]*(?:\s[^<>]*)?/?>`)

func ExtractPlaceholders(s string) []string { return uniqueSorted(placeholderRE.FindAllString(s, -1)) }

func ExtractTags(s string) []string { return uniqueSorted(tagRE.FindAllString(s, -1)) }

func uniqueSorted(m []string) []string {
	if len(m) == 0 {
		return nil
	}
	uniq := make(map[string]struct{}, len(m))
	for _, v := range m {
		uniq[v] = struct{}{}
	}
	out := make([]string, 0, len(uniq))
	for v := range uniq {
		out = append(out, v)
	}
	// longest first so %10 is masked before %1
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

func maskedNames(n int, kind string) []string {
	if n == 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("__%s_%d__", kind, i)
	}
	return out
}

func maskTokens(s string, placeholders, tags []string) (string, func(string) string) {
	type repl struct{ from, to string }
	var repls []repl
	masked := s
	// Replace placeholders first
	for i, ph := range placeholders {
		token := fmt.Sprintf("__PH_%d__", i)
		masked = strings.ReplaceAll(masked, ph, token)
		repls = append(repls, repl{from: token, to: ph})
	}
	for i, tg := range tags {
		token := fmt.Sprintf("__TAG_%d__", i)
		masked = strings.ReplaceAll(masked, tg, token)
		repls = append(repls, repl{from: token, to: tg})
	}
	unmask := func(in string) string {
		out := in
		for i := len(repls) - 1; i >= 0; i-- {
			out = strings.ReplaceAll(out, repls[i].from, repls[i].to)
		}
		return out
	}
	return masked, unmask
}

// keepEdgeSpaces restores the leading and trailing whitespace of src on a
// trimmed translation; UI code often concatenates labels such as " Launcher".
func keepEdgeSpaces(src, tr string) string {
	lead := src[:len(src)-len(strings.TrimLeft(src, " \t\n"))]
	trail := src[len(strings.TrimRight(src, " \t\n")):]
	if strings.TrimSpace(src) == "" {
		return src
	}
	return lead + tr + trail
}

// isRetryableTranslateError returns true for transient output/format issues that
// are likely to succeed on retry (e.g., invalid/missing JSON in model response).
func isRetryableTranslateError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "failed to parse translation json"):
		return true
	case strings.Contains(msg, "no choices returned"):
		return true
	case strings.Contains(msg, "unexpected end of"):
		return true
	case strings.Contains(msg, "invalid character"):
		return true
	default:
		return false
	}
}
