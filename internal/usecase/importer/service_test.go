package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"tskit/internal/adapters/db/sqlite"
	parreg "tskit/internal/adapters/parser/registry"
	"tskit/internal/domain"
)

func newService(t *testing.T) (*Service, int64) {
	t.Helper()
	db, err := sqlite.Init(sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	projects := sqlite.NewProjectRepo(db)
	p := &domain.Project{Name: "HydrogenVR", SourceLang: "en_US"}
	if err := projects.Create(context.Background(), p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	svc := New(sqlite.NewFileRepo(db), sqlite.NewUnitRepo(db), sqlite.NewTranslationRepo(db), projects, parreg.Default())
	return svc, p.ID
}

func readSample(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "..", "..", "data", "translations", "HydrogenVR_fr.ts"))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	return b
}

func TestImportShippedTable(t *testing.T) {
	svc, projectID := newService(t)
	ctx := context.Background()
	res, err := svc.Import(ctx, ImportArgs{ProjectID: projectID, Filename: "data/translations/HydrogenVR_fr.ts", Content: readSample(t)})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if diff := cmp.Diff(ImportResult{FileID: res.FileID, Units: 37, Translations: 37, Locale: "fr_FR"}, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	f, err := svc.Files.Get(ctx, res.FileID)
	if err != nil {
		t.Fatal(err)
	}
	if f.Path != "HydrogenVR_fr.ts" || f.Format != "ts" || len(f.Hash) != 64 {
		t.Fatalf("unexpected file record %+v", f)
	}

	units, err := svc.Units.ListByFile(ctx, res.FileID)
	if err != nil {
		t.Fatal(err)
	}
	if units[0].Context != "AbstractMainWin" || units[0].SourceText != "Save Screenshot" {
		t.Fatalf("unexpected first unit %+v", units[0])
	}
	tr, err := svc.Trans.Get(ctx, units[0].ID, "fr_FR")
	if err != nil || tr == nil {
		t.Fatalf("get translation: %v %v", tr, err)
	}
	if tr.Text != "Sauver une Capture d'Écran" || tr.Status != domain.StatusFinished {
		t.Fatalf("unexpected translation %+v", tr)
	}

	locales, err := svc.Projects.ListLocales(ctx, projectID)
	if err != nil {
		t.Fatal(err)
	}
	if len(locales) != 1 || locales[0].Locale != "fr_FR" {
		t.Fatalf("expected fr_FR project locale, got %+v", locales)
	}
}

func TestImportLocaleArgumentWinsAndIsNormalized(t *testing.T) {
	svc, projectID := newService(t)
	content := []byte("context,source,translation\nMainWin,Quit,Beenden\nMainWin,Open,\n")
	res, err := svc.Import(context.Background(), ImportArgs{ProjectID: projectID, Filename: "extra.csv", Locale: "de-de", Content: content})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Locale != "de_DE" || res.Units != 2 || res.Translations != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestImportWithoutLocaleStoresOnlyUnits(t *testing.T) {
	svc, projectID := newService(t)
	content := []byte("context,source\nMainWin,Quit\n")
	res, err := svc.Import(context.Background(), ImportArgs{ProjectID: projectID, Filename: "template.csv", Content: content})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Units != 1 || res.Translations != 0 || res.Locale != "" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestImportErrors(t *testing.T) {
	svc, projectID := newService(t)
	dup := `<TS version="2.1" language="fr_FR"><context><name>MainWin</name>
<message><source>Quit</source><translation>Quitter</translation></message>
<message><source>Quit</source><translation>Sortir</translation></message>
</context></TS>`
	cases := []struct {
		name string
		args ImportArgs
		want string
	}{
		{"unknown extension", ImportArgs{Filename: "strings.po"}, "cannot detect format"},
		{"unknown format", ImportArgs{Filename: "strings.ts", Format: "vdf"}, "unsupported format: vdf"},
		{"malformed", ImportArgs{Filename: "broken.ts", Content: []byte("<TS><context>")}, "invalid ts"},
		{"duplicate", ImportArgs{Filename: "dup.ts", Content: []byte(dup)}, "duplicate source"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.args.ProjectID = projectID
			_, err := svc.Import(context.Background(), tc.args)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
