package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tskit/internal/i18n"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"TSKIT_DB_PATH", "TSKIT_PREFIXES", "TSKIT_WORKERS", "TSKIT_LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "tskit.db" || cfg.TranslationsDir != "data/translations" {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"HydrogenVR"}, cfg.Prefixes); diff != "" {
		t.Fatalf("prefixes mismatch (-want +got):\n%s", diff)
	}
	if cfg.Workers != 4 || cfg.HTTPTimeout != time.Minute || cfg.ItemTimeout != 2*time.Minute {
		t.Fatalf("unexpected tuning: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TSKIT_PREFIXES", "HydrogenVR,qtbase")
	t.Setenv("TSKIT_LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "de_DE")
	t.Setenv("LANG", "fr_FR.UTF-8")
	t.Setenv("TSKIT_WORKERS", "2")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"HydrogenVR", "qtbase"}, cfg.Prefixes); diff != "" {
		t.Fatalf("prefixes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "", "de_DE", "fr_FR.UTF-8"}, cfg.LocaleCandidates()); diff != "" {
		t.Fatalf("locale candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("TSKIT_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero workers")
	}
	t.Setenv("TSKIT_WORKERS", "many")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestLocaleCandidatesPreferMessagesOverLang(t *testing.T) {
	cfg := Config{LCMessages: "fr_FR", Lang: "C"}
	if got := i18n.ResolveLocale("", cfg.LocaleCandidates()...); got != "fr_FR" {
		t.Fatalf("resolved %q, want fr_FR", got)
	}
	cfg.LCAll = "de_DE.UTF-8"
	if got := i18n.ResolveLocale("", cfg.LocaleCandidates()...); got != "de_DE" {
		t.Fatalf("LC_ALL not preferred: %q", got)
	}
}
