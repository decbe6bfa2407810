package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tskit/internal/domain"
	"tskit/internal/ports"
)

type fakeTemplates struct {
	tpl *domain.Template
	err error
}

func (f fakeTemplates) GetEffective(context.Context, string, *int64, string, string) (*domain.Template, error) {
	return f.tpl, f.err
}
func (f fakeTemplates) Upsert(context.Context, *domain.Template) error { return nil }

func TestRenderBuiltins(t *testing.T) {
	r := New(fakeTemplates{})
	data := ports.PromptData{
		SrcLang: "en_US", TgtLang: "fr_FR", Project: "HydrogenVR", Context: "SettingsWidget",
		Text: "Window Width", Placeholders: []string{"⟦0⟧"}, Locations: []string{"../src/SettingsWidget.cpp:27"},
	}
	sys, err := r.Render(context.Background(), "global", nil, TypeTranslateSingle, RoleSystem, data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sys, "from en_US to fr_FR") || !strings.Contains(sys, "(⟦0⟧)") {
		t.Fatalf("system prompt = %q", sys)
	}
	user, err := r.Render(context.Background(), "global", nil, TypeTranslateSingle, RoleUser, data)
	if err != nil {
		t.Fatal(err)
	}
	want := "project: HydrogenVR\nUI class: SettingsWidget\nused in: ../src/SettingsWidget.cpp:27\nsource: Window Width"
	if user != want {
		t.Fatalf("user prompt = %q, want %q", user, want)
	}
}

func TestRenderStoredTemplate(t *testing.T) {
	r := New(fakeTemplates{tpl: &domain.Template{Body: "{{.Context}}: {{.Text}}"}})
	got, err := r.Render(context.Background(), "project", nil, TypeTranslateSingle, RoleUser, ports.PromptData{Context: "BaseLauncher", Text: "QUIT"})
	if err != nil || got != "BaseLauncher: QUIT" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := New(fakeTemplates{err: errors.New("db down")}).Render(context.Background(), "global", nil, TypeTranslateSingle, RoleUser, ports.PromptData{}); err == nil {
		t.Fatal("expected repository error")
	}
	if _, err := New(nil).Render(context.Background(), "global", nil, "detect", RoleUser, ports.PromptData{}); err == nil {
		t.Fatal("expected error for unknown template")
	}
	if err := Validate("{{.Text"); err == nil {
		t.Fatal("expected parse error")
	}
}
