package qtts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	tsparser "tskit/internal/adapters/parser/qtts"
	"tskit/internal/domain"
	"tskit/internal/ports"
)

func TestExportRoundTripsSampleByteForByte(t *testing.T) {
	orig, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "data", "translations", "HydrogenVR_fr.ts"))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	res, err := tsparser.New().Parse(orig)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := New().Export(res.Catalog, ports.ExportOptions{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if diff := cmp.Diff(string(orig), string(out)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExportEscapesAndStatuses(t *testing.T) {
	c := &domain.Catalog{Language: "fr_FR"}
	c.Add(&domain.Message{
		Context:     "InputManager",
		Source:      `Toggle "VR" <origin> & more`,
		Translation: "Basculer l'origine",
		Status:      domain.StatusMachine,
		Locations:   []domain.Location{{Filename: "../example/include/InputManager.hpp", Line: 30}, {Filename: "gen.cpp"}},
	})
	c.Add(&domain.Message{Context: "InputManager", Source: "Ring\a", Status: domain.StatusUnfinished})
	c.Add(&domain.Message{Context: "InputManager", Source: "Old", Translation: "Vieux", Status: domain.StatusObsolete})

	out, err := New().Export(c, ports.ExportOptions{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.1" language="fr_FR">
<context>
    <name>InputManager</name>
    <message>
        <location filename="../example/include/InputManager.hpp" line="30"/>
        <location filename="gen.cpp"/>
        <source>Toggle &quot;VR&quot; &lt;origin&gt; &amp; more</source>
        <translation type="unfinished">Basculer l&apos;origine</translation>
    </message>
    <message>
        <source>Ring<byte value="x7"/></source>
        <translation type="unfinished"></translation>
    </message>
    <message>
        <source>Old</source>
        <translation type="obsolete">Vieux</translation>
    </message>
</context>
</TS>
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestExportNumerusAndComments(t *testing.T) {
	c := &domain.Catalog{Version: "2.1", Language: "de_DE", SourceLanguage: "en_US"}
	c.Add(&domain.Message{
		Context:           "FileDialog",
		ID:                "files.selected",
		Source:            "%n file(s) selected",
		Comment:           "status",
		ExtraComment:      "status bar",
		TranslatorComment: "ok",
		Numerus:           true,
		NumerusForms:      []string{"%n Datei", "%n Dateien"},
		Status:            domain.StatusFinished,
	})
	out, err := New().Export(c, ports.ExportOptions{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	s := string(out)
	for _, frag := range []string{
		`<TS version="2.1" language="de_DE" sourcelanguage="en_US">`,
		`<message id="files.selected" numerus="yes">`,
		"        <comment>status</comment>\n        <extracomment>status bar</extracomment>\n        <translatorcomment>ok</translatorcomment>\n",
		"        <translation>\n            <numerusform>%n Datei</numerusform>\n            <numerusform>%n Dateien</numerusform>\n        </translation>\n",
	} {
		if !strings.Contains(s, frag) {
			t.Fatalf("missing %q in:\n%s", frag, s)
		}
	}

	res, err := tsparser.New().Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if diff := cmp.Diff(c, res.Catalog); diff != "" {
		t.Fatalf("reparse mismatch (-want +got):\n%s", diff)
	}
}

func TestExportNilCatalog(t *testing.T) {
	if _, err := New().Export(nil, ports.ExportOptions{}); err == nil {
		t.Fatal("expected error")
	}
}
