package prompt

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"tskit/internal/ports"
)

const (
	TypeTranslateSingle = "translate_single"
	RoleSystem          = "system"
	RoleUser            = "user"
)

type Renderer struct {
	Templates ports.TemplateRepository
}

func New(templates ports.TemplateRepository) *Renderer { return &Renderer{Templates: templates} }

var funcs = template.FuncMap{"join": strings.Join}

// Render executes the effective template for scope, falling back to the
// builtin one when the repository has none.
func (r *Renderer) Render(ctx context.Context, scope string, refID *int64, typ, role string, data ports.PromptData) (string, error) {
	body := builtinTemplate(typ, role)
	if r.Templates != nil {
		t, err := r.Templates.GetEffective(ctx, scope, refID, typ, role)
		if err != nil {
			return "", fmt.Errorf("load template: %w", err)
		}
		if t != nil && t.Body != "" {
			body = t.Body
		}
	}
	if body == "" {
		return "", fmt.Errorf("no template for %s/%s", typ, role)
	}
	tpl, err := template.New("prompt").Funcs(funcs).Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Validate parses body so broken templates are rejected before they are stored.
func Validate(body string) error {
	_, err := template.New("prompt").Funcs(funcs).Parse(body)
	return err
}

func builtinTemplate(typ, role string) string {
	switch {
	case typ == TypeTranslateSingle && role == RoleSystem:
		return "You are a professional software localization translator working on a Qt application. " +
			"Translate user interface strings from {{.SrcLang}} to {{.TgtLang}}. " +
			"Keep every placeholder token exactly as written{{if .Placeholders}} ({{join .Placeholders \", \"}}){{end}}, " +
			"keep markup tags{{if .Tags}} ({{join .Tags \", \"}}){{end}} and keyboard accelerators (&). " +
			"Preserve line breaks, leading and trailing spaces. Match the length and tone of a UI label. " +
			"Return only JSON: {\"translation\":\"...\"}."
	case typ == TypeTranslateSingle && role == RoleUser:
		return "project: {{.Project}}\nUI class: {{.Context}}" +
			"{{if .Disambiguation}}\ndisambiguation: {{.Disambiguation}}{{end}}" +
			"{{if .DeveloperNote}}\ndeveloper note: {{.DeveloperNote}}{{end}}" +
			"{{if .Locations}}\nused in: {{join .Locations \", \"}}{{end}}" +
			"\nsource: {{.Text}}"
	}
	return ""
}
