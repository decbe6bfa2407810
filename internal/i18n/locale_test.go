package i18n

import "testing"

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"fr-FR":       "fr_FR",
		"fr_FR.UTF-8": "fr_FR",
		"fr_fr":       "fr_FR",
		"fr":          "fr",
		"de_AT@euro":  "de_AT",
		"zh-Hant-TW":  "zh_Hant_TW",
	}
	for in, want := range cases {
		got, err := NormalizeLocale(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeLocale(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "C", "POSIX", "not a locale"} {
		if _, err := NormalizeLocale(bad); err == nil {
			t.Fatalf("NormalizeLocale(%q): expected error", bad)
		}
	}
}

func TestResolveLocale(t *testing.T) {
	if got := ResolveLocale("", "C", "fr_FR.UTF-8"); got != "fr_FR" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveLocale("de-DE", "fr_FR"); got != "de_DE" {
		t.Fatalf("setting not preferred: %q", got)
	}
	if got := ResolveLocale(""); got != DefaultLocale {
		t.Fatalf("got %q", got)
	}
}

func TestMatchLocale(t *testing.T) {
	avail := []string{"en_US", "fr_FR", "de_DE"}
	if got, ok := MatchLocale(avail, "fr_CA"); !ok || got != "fr_FR" {
		t.Fatalf("MatchLocale(fr_CA) = %q, %v", got, ok)
	}
	if got, ok := MatchLocale(avail, "de"); !ok || got != "de_DE" {
		t.Fatalf("MatchLocale(de) = %q, %v", got, ok)
	}
	if _, ok := MatchLocale(nil, "fr"); ok {
		t.Fatal("expected no match")
	}
}
