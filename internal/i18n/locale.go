package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when neither the settings nor the environment name a
// usable locale.
const DefaultLocale = "en_US"

var untagged = language.Und

// NormalizeLocale converts a BCP 47 tag or POSIX locale name into the form
// used in translation file names: fr-FR, fr_FR.UTF-8 and fr_fr all become
// fr_FR.
func NormalizeLocale(s string) (string, error) {
	raw := trimEncoding(s)
	if raw == "" || raw == "C" || raw == "POSIX" {
		return "", fmt.Errorf("no locale in %q", s)
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", s, err)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", fmt.Errorf("parse locale %q: unknown language", s)
	}
	parts := []string{base.String()}
	if script, c := tag.Script(); c == language.Exact {
		parts = append(parts, script.String())
	}
	if region, c := tag.Region(); c == language.Exact {
		parts = append(parts, region.String())
	}
	return strings.Join(parts, "_"), nil
}

// ResolveLocale returns the first of setting and environment that
// normalizes to a locale, or DefaultLocale.
func ResolveLocale(setting string, environment ...string) string {
	for _, v := range append([]string{setting}, environment...) {
		if loc, err := NormalizeLocale(v); err == nil {
			return loc
		}
	}
	return DefaultLocale
}

// MatchLocale picks the available locale that best serves preferred.
func MatchLocale(available []string, preferred string) (string, bool) {
	var (
		tags  []language.Tag
		names []string
	)
	for _, a := range available {
		tag, err := language.Parse(trimEncoding(a))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		names = append(names, a)
	}
	want, err := language.Parse(trimEncoding(preferred))
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, i, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return "", false
	}
	return names[i], true
}

// trimEncoding drops the codeset and modifier of a POSIX locale name.
func trimEncoding(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	return s
}
