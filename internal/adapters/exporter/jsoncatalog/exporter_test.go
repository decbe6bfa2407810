package jsoncatalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	parser "tskit/internal/adapters/parser/jsoncatalog"
	"tskit/internal/domain"
	"tskit/internal/ports"
)

func TestExportReparses(t *testing.T) {
	c := &domain.Catalog{Language: "fr_FR"}
	c.Add(&domain.Message{Context: "BaseLauncher", Source: "QUIT", Translation: "QUITTER", Status: domain.StatusFinished})
	c.Add(&domain.Message{Context: "BaseLauncher", Source: "Gone", Translation: "Parti", Status: domain.StatusObsolete})
	c.Add(&domain.Message{Context: "MainWin", Source: "Hello World !\nLet's draw some text !", Status: domain.StatusUnfinished})

	out, err := New().Export(c, ports.ExportOptions{Fallback: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	res, err := parser.New().Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	want := []*domain.Message{
		{Context: "BaseLauncher", Source: "QUIT", Translation: "QUITTER", Status: domain.StatusFinished},
		{Context: "MainWin", Source: "Hello World !\nLet's draw some text !", Translation: "Hello World !\nLet's draw some text !", Status: domain.StatusFinished},
	}
	if diff := cmp.Diff(want, res.Catalog.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if res.Locale != "fr_FR" {
		t.Fatalf("locale = %q", res.Locale)
	}
}
