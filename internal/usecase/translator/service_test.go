package translator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"tskit/internal/adapters/db/sqlite"
	"tskit/internal/adapters/prompt"
	"tskit/internal/domain"
	"tskit/internal/ports"
)

// stubProvider replaces words of the masked segment and records what it saw.
type stubProvider struct {
	mu       sync.Mutex
	segments []ports.Segment
	params   []ports.TranslateParams
	words    map[string]string
	errs     []error
}

func (p *stubProvider) Translate(_ context.Context, seg ports.Segment, tp ports.TranslateParams) (ports.TranslateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.segments = append(p.segments, seg)
	p.params = append(p.params, tp)
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return ports.TranslateResult{}, err
		}
	}
	out := seg.Text
	for from, to := range p.words {
		out = strings.ReplaceAll(out, from, to)
	}
	return ports.TranslateResult{Translation: out}, nil
}

func (p *stubProvider) ListModels(context.Context) ([]ports.ModelInfo, error) { return nil, nil }

func (p *stubProvider) Test(context.Context) error { return nil }

func setup(t *testing.T, sp *stubProvider) (*Service, *domain.Provider) {
	t.Helper()
	db, err := sqlite.Init(sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	providers := sqlite.NewProviderRepo(db)
	prov := &domain.Provider{Type: domain.ProviderOllama, Name: "local", Model: "llama3", OptionsRaw: `{"temperature":0.3}`}
	if err := providers.Create(context.Background(), prov); err != nil {
		t.Fatal(err)
	}
	svc := New(Deps{
		Providers:     providers,
		Cache:         sqlite.NewCacheRepo(db),
		Prompt:        prompt.New(sqlite.NewTemplateRepo(db)),
		BuildProvider: func(*domain.Provider) (ports.Provider, error) { return sp, nil },
	})
	svc.backoff = 0
	return svc, prov
}

func TestTranslateOneMasksPlaceholdersAndTags(t *testing.T) {
	sp := &stubProvider{words: map[string]string{"Loaded": "Chargé", "of": "sur", "files": "fichiers"}}
	svc, prov := setup(t, sp)
	unit := &domain.Unit{
		Context:      "MainWin",
		SourceText:   "Loaded %1 of %2 <b>files</b>",
		ExtraComment: "status bar",
		Locations:    []domain.Location{{Filename: "../src/MainWin.cpp", Line: 40}},
	}
	got, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: prov.ID, Unit: unit, Project: "HydrogenVR", SourceLang: "en_US", TargetLang: "fr_FR"})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Chargé %1 sur %2 <b>fichiers</b>" {
		t.Fatalf("unexpected translation %q", got)
	}

	seg := sp.segments[0]
	if seg.Text != "Loaded __PH_0__ of __PH_1__ __TAG_1__files__TAG_0__" {
		t.Fatalf("unexpected masked text %q", seg.Text)
	}
	if diff := cmp.Diff([]string{"__PH_0__", "__PH_1__"}, seg.Placeholders); diff != "" {
		t.Fatalf("placeholders mismatch (-want +got):\n%s", diff)
	}
	p := sp.params[0]
	if p.Model != "llama3" || p.Temperature != 0.3 {
		t.Fatalf("unexpected params %+v", p)
	}
	for _, want := range []string{"UI class: MainWin", "developer note: status bar", "used in: ../src/MainWin.cpp:40"} {
		if !strings.Contains(p.UserPrompt, want) {
			t.Fatalf("user prompt %q does not contain %q", p.UserPrompt, want)
		}
	}
}

func TestTranslateOneUsesCache(t *testing.T) {
	sp := &stubProvider{words: map[string]string{"Quit": "Quitter"}}
	svc, prov := setup(t, sp)
	args := TranslateArgs{ProviderID: prov.ID, Unit: &domain.Unit{Context: "BaseLauncher", SourceText: "Quit"}, TargetLang: "fr_FR"}
	for i := 0; i < 2; i++ {
		got, err := svc.TranslateOne(context.Background(), args)
		if err != nil || got != "Quitter" {
			t.Fatalf("call %d: got %q, %v", i, got, err)
		}
	}
	if len(sp.segments) != 1 {
		t.Fatalf("expected one provider call, got %d", len(sp.segments))
	}
	args.BypassCache = true
	if _, err := svc.TranslateOne(context.Background(), args); err != nil {
		t.Fatal(err)
	}
	if len(sp.segments) != 2 {
		t.Fatalf("expected bypass to reach the provider, got %d calls", len(sp.segments))
	}
}

func TestTranslateOneKeepsEdgeSpaces(t *testing.T) {
	sp := &stubProvider{words: map[string]string{"Launcher": "Lanceur"}}
	svc, prov := setup(t, sp)
	// the second class shares the cached translation of the first
	for _, class := range []string{"BaseLauncher", "Launcher"} {
		got, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: prov.ID, Unit: &domain.Unit{Context: class, SourceText: " Launcher"}, TargetLang: "fr_FR"})
		if err != nil {
			t.Fatal(err)
		}
		if got != " Lanceur" {
			t.Fatalf("%s: expected leading space kept, got %q", class, got)
		}
	}
	if len(sp.segments) != 1 {
		t.Fatalf("expected one provider call, got %d", len(sp.segments))
	}
}

func TestTranslateOneRejectsLostPlaceholder(t *testing.T) {
	sp := &stubProvider{words: map[string]string{"__PH_0__": ""}}
	svc, prov := setup(t, sp)
	_, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: prov.ID, Unit: &domain.Unit{SourceText: "%n file(s)"}, TargetLang: "fr_FR"})
	if err == nil || !strings.Contains(err.Error(), "placeholder missing in translation: %n") {
		t.Fatalf("expected missing placeholder error, got %v", err)
	}
}

func TestTranslateOneRetriesMalformedOutput(t *testing.T) {
	sp := &stubProvider{
		words: map[string]string{"Back": "Retour"},
		errs:  []error{errors.New("failed to parse translation json"), nil},
	}
	svc, prov := setup(t, sp)
	got, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: prov.ID, Unit: &domain.Unit{SourceText: "Back"}, TargetLang: "fr_FR"})
	if err != nil || got != "Retour" {
		t.Fatalf("got %q, %v", got, err)
	}
	if len(sp.segments) != 2 {
		t.Fatalf("expected a retry, got %d calls", len(sp.segments))
	}
}

func TestTranslateOneDoesNotRetryOtherErrors(t *testing.T) {
	sp := &stubProvider{errs: []error{errors.New("ollama chat: status 500")}}
	svc, prov := setup(t, sp)
	if _, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: prov.ID, Unit: &domain.Unit{SourceText: "Back"}, TargetLang: "fr_FR"}); err == nil {
		t.Fatal("expected error")
	}
	if len(sp.segments) != 1 {
		t.Fatalf("expected a single call, got %d", len(sp.segments))
	}
}

func TestTranslateOneRequiresUnit(t *testing.T) {
	svc, prov := setup(t, &stubProvider{})
	if _, err := svc.TranslateOne(context.Background(), TranslateArgs{ProviderID: prov.ID}); err == nil {
		t.Fatal("expected error without unit")
	}
}

func TestExtractPlaceholders(t *testing.T) {
	got := ExtractPlaceholders("%L1 of %n, %Ln at %10 and %1 again %1, 100%")
	if diff := cmp.Diff([]string{"%10", "%L1", "%Ln", "%1", "%n"}, got); diff != "" {
		t.Fatalf("placeholders mismatch (-want +got):\n%s", diff)
	}
	if ExtractPlaceholders("no markers") != nil {
		t.Fatal("expected nil for plain text")
	}
}

func TestExtractTags(t *testing.T) {
	got := ExtractTags(`<a href="x">link</a><br/> a < b`)
	if diff := cmp.Diff([]string{`<a href="x">`, "<br/>", "</a>"}, got); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}
