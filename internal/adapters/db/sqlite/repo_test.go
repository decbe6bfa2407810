package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"tskit/internal/domain"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(MemoryPath)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var ignoreStamps = cmpopts.IgnoreFields(domain.Unit{}, "CreatedAt")

func seedFile(t *testing.T, db *sql.DB) (*domain.Project, *domain.File) {
	t.Helper()
	ctx := context.Background()
	p := &domain.Project{Name: "HydrogenVR", SourceLang: "en_US"}
	if err := NewProjectRepo(db).Create(ctx, p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	f := &domain.File{ProjectID: p.ID, Path: "HydrogenVR_fr.ts", Format: "ts", Locale: "fr_FR", Hash: "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881"}
	if err := NewFileRepo(db).Create(ctx, f); err != nil {
		t.Fatalf("create file: %v", err)
	}
	return p, f
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tskit.db")
	db, err := Init(path)
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	db.Close()
	db, err = Init(path)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 applied migration, got %d", n)
	}
}

func TestMigrateAppliesNewFilesInOrder(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"migrations/0002_b.sql": {Data: []byte(`INSERT INTO notes(body) VALUES ('second');`)},
		"migrations/0001_a.sql": {Data: []byte(`CREATE TABLE notes (body TEXT NOT NULL);`)},
	}
	for i := 0; i < 2; i++ {
		if err := migrate(ctx, db, fsys); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("notes = %d, %v", n, err)
	}

	fsys["migrations/0003_bad.sql"] = &fstest.MapFile{Data: []byte(`INSERT INTO missing VALUES (1);`)}
	if err := migrate(ctx, db, fsys); err == nil {
		t.Fatal("expected error for broken migration")
	}
	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if applied["0003_bad.sql"] || !applied["0002_b.sql"] {
		t.Fatalf("applied = %v", applied)
	}
}

func TestProjectRepo(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewProjectRepo(db)
	p, _ := seedFile(t, db)

	got, err := repo.GetByName(ctx, "HydrogenVR")
	if err != nil || got == nil || got.ID != p.ID {
		t.Fatalf("GetByName = %+v, %v", got, err)
	}
	missing, err := repo.GetByName(ctx, "qtbase")
	if err != nil || missing != nil {
		t.Fatalf("expected nil project, got %+v, %v", missing, err)
	}
	for _, loc := range []string{"fr_FR", "de_DE", "fr_FR"} {
		if err := repo.AddLocale(ctx, &domain.ProjectLocale{ProjectID: p.ID, Locale: loc}); err != nil {
			t.Fatalf("add locale %s: %v", loc, err)
		}
	}
	locs, err := repo.ListLocales(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, l := range locs {
		names = append(names, l.Locale)
	}
	if diff := cmp.Diff([]string{"de_DE", "fr_FR"}, names); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}
}

func TestUnitsKeepDocumentOrder(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	_, f := seedFile(t, db)
	units := NewUnitRepo(db)

	in := []*domain.Unit{
		domain.UnitFromMessage(f.ID, 0, &domain.Message{Context: "SettingsWidget", Source: "Window Width",
			Locations: []domain.Location{{Filename: "../src/SettingsWidget.cpp", Line: 27}}}),
		domain.UnitFromMessage(f.ID, 1, &domain.Message{Context: "BaseLauncher", Source: "QUIT"}),
		domain.UnitFromMessage(f.ID, 2, &domain.Message{Context: "AbstractMainWin", Source: "%n file(s)", Numerus: true, Comment: "status"}),
	}
	if err := units.UpsertBatch(ctx, in); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	for _, u := range in {
		if u.ID == 0 {
			t.Fatalf("unit %q has no id", u.SourceText)
		}
	}
	got, err := units.ListByFile(ctx, f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, got, ignoreStamps); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}

	// re-import updates in place and keeps ids
	again := domain.UnitFromMessage(f.ID, 5, &domain.Message{Context: "BaseLauncher", Source: "QUIT", ExtraComment: "button"})
	if err := units.UpsertBatch(ctx, []*domain.Unit{again}); err != nil {
		t.Fatal(err)
	}
	if again.ID != in[1].ID {
		t.Fatalf("upsert changed id: %d != %d", again.ID, in[1].ID)
	}
	u, err := units.Get(ctx, again.ID)
	if err != nil || u.ExtraComment != "button" || u.Position != 5 {
		t.Fatalf("unexpected unit %+v, %v", u, err)
	}
}

func TestTranslationRepo(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	_, f := seedFile(t, db)
	units := []*domain.Unit{
		{FileID: f.ID, Key: "a", Context: "W", SourceText: "Open", Position: 1},
		{FileID: f.ID, Key: "b", Context: "W", SourceText: "%n file(s)", Numerus: true, Position: 0},
	}
	if err := NewUnitRepo(db).UpsertBatch(ctx, units); err != nil {
		t.Fatal(err)
	}
	repo := NewTranslationRepo(db)
	conf := 0.5
	tr := &domain.Translation{UnitID: units[0].ID, Locale: "fr_FR", Text: "Ouvrir", Status: domain.StatusMachine, Confidence: &conf}
	if err := repo.Upsert(ctx, tr); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	plural := &domain.Translation{UnitID: units[1].ID, Locale: "fr_FR", NumerusForms: []string{"%n fichier", "%n fichiers"}, Status: domain.StatusFinished}
	if err := repo.Upsert(ctx, plural); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, units[0].ID, "fr_FR")
	if err != nil || got == nil {
		t.Fatalf("get: %+v, %v", got, err)
	}
	if got.Text != "Ouvrir" || got.Status != domain.StatusMachine || got.Confidence == nil || *got.Confidence != 0.5 {
		t.Fatalf("unexpected translation %+v", got)
	}
	none, err := repo.Get(ctx, units[0].ID, "de_DE")
	if err != nil || none != nil {
		t.Fatalf("expected nil, got %+v, %v", none, err)
	}

	list, err := repo.ListByFileLocale(ctx, f.ID, "fr_FR")
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %d, %v", len(list), err)
	}
	if diff := cmp.Diff([]string{"%n fichier", "%n fichiers"}, list[0].NumerusForms); diff != "" {
		t.Fatalf("numerus forms mismatch (-want +got):\n%s", diff)
	}

	tr.Text, tr.Status = "Ouvrir le fichier", domain.StatusFinished
	if err := repo.Upsert(ctx, tr); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.Get(ctx, units[0].ID, "fr_FR")
	if got.Text != "Ouvrir le fichier" || got.Status != domain.StatusFinished {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestDeletingFileCascades(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	_, f := seedFile(t, db)
	u := &domain.Unit{FileID: f.ID, Key: "k", SourceText: "QUIT"}
	if err := NewUnitRepo(db).UpsertBatch(ctx, []*domain.Unit{u}); err != nil {
		t.Fatal(err)
	}
	if err := NewFileRepo(db).Delete(ctx, f.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := NewUnitRepo(db).Get(ctx, u.ID); !noRows(err) {
		t.Fatalf("expected unit to be deleted, got %v", err)
	}
}

func TestSettingsRepo(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewSettingsRepo(db)
	v, err := repo.Get(ctx, domain.SettingLanguage)
	if err != nil || v != "" {
		t.Fatalf("unset setting = %q, %v", v, err)
	}
	for _, want := range []string{"fr_FR", "de_DE"} {
		if err := repo.Set(ctx, domain.SettingLanguage, want); err != nil {
			t.Fatal(err)
		}
		if v, _ := repo.Get(ctx, domain.SettingLanguage); v != want {
			t.Fatalf("got %q, want %q", v, want)
		}
	}
	if err := repo.Delete(ctx, domain.SettingLanguage); err != nil {
		t.Fatal(err)
	}
	if v, err := repo.Get(ctx, domain.SettingLanguage); err != nil || v != "" {
		t.Fatalf("deleted setting = %q, %v", v, err)
	}
}

func TestTemplateRepoFallsBackToGlobal(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewTemplateRepo(db)
	if tpl, err := repo.GetEffective(ctx, "project", nil, "translate_single", "system"); err != nil || tpl != nil {
		t.Fatalf("expected no template, got %+v, %v", tpl, err)
	}
	if err := repo.Upsert(ctx, &domain.Template{Scope: "global", Type: "translate_single", Role: "system", Body: "global"}); err != nil {
		t.Fatal(err)
	}
	pid := int64(7)
	if err := repo.Upsert(ctx, &domain.Template{Scope: "project", RefID: &pid, Type: "translate_single", Role: "system", Body: "project"}); err != nil {
		t.Fatal(err)
	}
	tpl, err := repo.GetEffective(ctx, "project", &pid, "translate_single", "system")
	if err != nil || tpl.Body != "project" {
		t.Fatalf("project template = %+v, %v", tpl, err)
	}
	other := int64(8)
	tpl, err = repo.GetEffective(ctx, "project", &other, "translate_single", "system")
	if err != nil || tpl.Body != "global" {
		t.Fatalf("fallback template = %+v, %v", tpl, err)
	}
}

func TestCacheRepo(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewCacheRepo(db)
	key := domain.CacheKey{Text: "QUIT", SourceLang: "en_US", TargetLang: "fr_FR", Provider: "ollama", Model: "m"}
	if e, err := repo.Get(ctx, key); err != nil || e != nil {
		t.Fatalf("expected miss, got %+v, %v", e, err)
	}
	for _, tr := range []string{"QUITTER", "Quitter"} {
		if err := repo.Put(ctx, &domain.CacheEntry{CacheKey: key, Translation: tr}); err != nil {
			t.Fatal(err)
		}
	}
	e, err := repo.Get(ctx, key)
	if err != nil || e == nil || e.Translation != "Quitter" {
		t.Fatalf("cache entry = %+v, %v", e, err)
	}
	key.Model = "other"
	if e, err := repo.Get(ctx, key); err != nil || e != nil {
		t.Fatalf("expected miss for another model, got %+v, %v", e, err)
	}
}

func TestProviderAndJobRepos(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	providers := NewProviderRepo(db)
	p := &domain.Provider{Type: domain.ProviderOllama, Name: "local", BaseURL: "http://localhost:11434", Model: "llama3"}
	if err := providers.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := providers.SaveModelCache(ctx, p.ID, []string{"qwen", "llama3"}); err != nil {
		t.Fatal(err)
	}
	models, err := providers.ListModelCache(ctx, p.ID)
	if err != nil || len(models) != 2 || models[0].Name != "llama3" {
		t.Fatalf("models = %+v, %v", models, err)
	}

	jobs := NewJobRepo(db)
	j := &domain.Job{Type: "translate_file", Status: "running", ProviderID: &p.ID, ParamsRaw: "{}", Total: 2}
	if _, err := jobs.Create(ctx, j); err != nil {
		t.Fatal(err)
	}
	loc := "fr_FR"
	item := &domain.JobItem{JobID: j.ID, Locale: &loc, Status: "running"}
	if _, err := jobs.AddItem(ctx, item); err != nil {
		t.Fatal(err)
	}
	if err := jobs.UpdateItem(ctx, item.ID, "failed", "boom"); err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"first", "second"} {
		if err := jobs.AddLog(ctx, &domain.JobLog{JobID: j.ID, Level: "info", Message: msg}); err != nil {
			t.Fatal(err)
		}
	}
	if err := jobs.UpdateProgress(ctx, j.ID, 2, 2, "done"); err != nil {
		t.Fatal(err)
	}
	got, err := jobs.Get(ctx, j.ID)
	if err != nil || got.Status != "done" || got.Progress != 2 || *got.ProviderID != p.ID || got.ProjectID != nil {
		t.Fatalf("job = %+v, %v", got, err)
	}
	items, _ := jobs.ListItems(ctx, j.ID)
	if len(items) != 1 || items[0].Error != "boom" || *items[0].Locale != "fr_FR" || items[0].UnitID != nil {
		t.Fatalf("items = %+v", items)
	}
	logs, _ := jobs.ListLogs(ctx, j.ID, 0)
	if len(logs) != 2 || logs[0].Message != "first" {
		t.Fatalf("logs = %+v", logs)
	}
	if err := jobs.Delete(ctx, j.ID); err != nil {
		t.Fatal(err)
	}
	if got, err := jobs.Get(ctx, j.ID); err != nil || got != nil {
		t.Fatalf("expected deleted job, got %+v, %v", got, err)
	}
}
