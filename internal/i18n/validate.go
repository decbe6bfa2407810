package i18n

import (
	"fmt"
	"strings"

	"tskit/internal/domain"
)

// Issue is one problem found in a catalog.
type Issue struct {
	Context  string
	Source   string
	Location domain.Location
	Problem  string
}

func (i Issue) String() string {
	where := i.Context
	if i.Location.Filename != "" {
		where = fmt.Sprintf("%s:%d (%s)", i.Location.Filename, i.Location.Line, i.Context)
	}
	return fmt.Sprintf("%s: %s: %q", where, i.Problem, i.Source)
}

type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		lines[i] = is.String()
	}
	return fmt.Sprintf("%d validation issue(s):\n%s", len(e.Issues), strings.Join(lines, "\n"))
}

// Validate checks that every message has a source and that each source is
// unique among the active messages of its context. The same source under
// two disambiguation comments is reported as ambiguous, since a lookup by
// context and source alone cannot tell them apart.
func Validate(c *domain.Catalog) error {
	if c == nil {
		return &ValidationError{Issues: []Issue{{Problem: "empty catalog"}}}
	}
	var issues []Issue
	seen := map[string]bool{}
	sources := map[string]bool{}
	for _, m := range c.Messages() {
		is := Issue{Context: m.Context, Source: m.Source}
		if len(m.Locations) > 0 {
			is.Location = m.Locations[0]
		}
		if m.Source == "" {
			is.Problem = "empty source"
			issues = append(issues, is)
			continue
		}
		if !m.Status.Active() {
			continue
		}
		key, src := m.Key(), domain.MessageKey(m.Context, m.Source, "")
		switch {
		case seen[key]:
			is.Problem = "duplicate source"
			issues = append(issues, is)
		case sources[src]:
			is.Problem = "ambiguous source"
			issues = append(issues, is)
		}
		seen[key] = true
		sources[src] = true
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
