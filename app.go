package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	dbsqlite "tskit/internal/adapters/db/sqlite"
	parreg "tskit/internal/adapters/parser/registry"
	apiapp "tskit/internal/api/app"
	"tskit/internal/domain"
	"tskit/internal/i18n"
	"tskit/internal/platform/config"
)

const usage = `usage: tskit <command> [flags] [args]

commands:
  validate FILE...                      check translation files
  tr [-locale L] [-prefix a,b] [-comment C] [-n N] CONTEXT SOURCE
  project create|list|add-locale        manage projects
  import -project P FILE...             import translation files
  files PROJECT                         list imported files
  export -file ID [-locale L] [-format F] [-o PATH]
  units -file ID [-locale L]            list units with their translations
  set-translation -unit ID -locale L TEXT...
  provider add|list|models|test|check|delete
  template set -scope S -role R FILE
  fill -project P -provider ID -file ID [-locale a,b]
  jobs list|show
  locale [get|set|clear]
`

// App runs tskit commands. The database is opened on first use so that
// validate and tr work without one.
type App struct {
	cfg    config.Config
	out    io.Writer
	db     *sql.DB
	svc    *services
	tables *apiapp.TableAPI
}

func NewApp(cfg config.Config, out io.Writer) *App {
	return &App{
		cfg:    cfg,
		out:    out,
		tables: apiapp.NewTableAPI(os.DirFS(cfg.TranslationsDir), parreg.Default()),
	}
}

func (a *App) open() error {
	if a.svc != nil {
		return nil
	}
	db, err := dbsqlite.Init(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.svc = wire(db, a.cfg)
	return nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db, a.svc = nil, nil
	return err
}

// Run dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("missing command")
	}
	cmd, rest := args[0], args[1:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Fprint(a.out, usage)
		return nil
	}
	if cmd != "validate" && cmd != "tr" {
		if err := a.open(); err != nil {
			return err
		}
	}
	switch cmd {
	case "validate":
		return a.cmdValidate(rest)
	case "tr":
		return a.cmdTr(ctx, rest)
	case "project":
		return a.cmdProject(ctx, rest)
	case "import":
		return a.cmdImport(ctx, rest)
	case "files":
		return a.cmdFiles(ctx, rest)
	case "export":
		return a.cmdExport(ctx, rest)
	case "units":
		return a.cmdUnits(ctx, rest)
	case "set-translation":
		return a.cmdSetTranslation(ctx, rest)
	case "provider":
		return a.cmdProvider(ctx, rest)
	case "template":
		return a.cmdTemplate(ctx, rest)
	case "fill":
		return a.cmdFill(ctx, rest)
	case "jobs":
		return a.cmdJobs(ctx, rest)
	case "locale":
		return a.cmdLocale(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) cmdValidate(args []string) error {
	fs := newFlagSet("validate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("validate: no files given")
	}
	bad := 0
	for _, name := range fs.Args() {
		b, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		res, err := a.tables.Validate(name, b)
		if err != nil {
			fmt.Fprintln(a.out, err)
			bad++
			continue
		}
		if len(res.Issues) == 0 {
			fmt.Fprintf(a.out, "%s: ok, %d messages\n", name, res.Messages)
			continue
		}
		bad++
		fmt.Fprintf(a.out, "%s: %d issue(s)\n", name, len(res.Issues))
		for _, is := range res.Issues {
			fmt.Fprintf(a.out, "  %s\n", is)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d files invalid", bad, fs.NArg())
	}
	return nil
}

func (a *App) cmdTr(ctx context.Context, args []string) error {
	fs := newFlagSet("tr")
	locale := fs.String("locale", "", "target locale, defaults to the stored language or the environment")
	prefixes := fs.String("prefix", "", "comma separated table prefixes")
	comment := fs.String("comment", "", "disambiguation comment")
	n := fs.Int("n", -1, "count for plural forms")
	finishedOnly := fs.Bool("finished", false, "ignore unfinished translations")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("tr: want CONTEXT SOURCE")
	}
	setting := *locale
	if setting == "" {
		setting = a.storedLocale(ctx)
	}
	loc := i18n.ResolveLocale(setting, a.cfg.LocaleCandidates()...)

	pfx := a.cfg.Prefixes
	if *prefixes != "" {
		pfx = splitList(*prefixes)
	}
	var opts []i18n.TableOption
	if *finishedOnly {
		opts = append(opts, i18n.WithoutUnfinished())
	}
	tr, err := a.tables.Translator(pfx, loc, opts...)
	if err != nil {
		return err
	}
	class, source := fs.Arg(0), fs.Arg(1)
	if *n >= 0 {
		fmt.Fprintln(a.out, tr.TranslateN(class, source, *comment, *n))
		return nil
	}
	fmt.Fprintln(a.out, tr.TranslateDisambiguated(class, source, *comment))
	return nil
}

// storedLocale reads the saved UI language without creating a database.
func (a *App) storedLocale(ctx context.Context) string {
	if a.cfg.DBPath != dbsqlite.MemoryPath {
		if _, err := os.Stat(a.cfg.DBPath); err != nil {
			return ""
		}
	}
	if err := a.open(); err != nil {
		log.Printf("tr: %v", err)
		return ""
	}
	v, err := a.svc.locale.Get(ctx)
	if err != nil {
		log.Printf("tr: read language setting: %v", err)
	}
	return v
}

func (a *App) cmdProject(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("project: want create, list, add-locale or locales")
	}
	switch args[0] {
	case "create":
		fs := newFlagSet("project create")
		source := fs.String("source", "en_US", "source language")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("project create: want NAME")
		}
		p, err := a.svc.projects.Create(ctx, fs.Arg(0), *source)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "project %d %s\n", p.ID, p.Name)
		return nil
	case "list":
		list, err := a.svc.projects.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSOURCE")
		for _, p := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.SourceLang)
		}
		return tw.Flush()
	case "add-locale":
		if len(args) != 3 {
			return errors.New("project add-locale: want PROJECT LOCALE")
		}
		p, err := a.svc.projects.Resolve(ctx, args[1])
		if err != nil {
			return err
		}
		pl, err := a.svc.projects.AddLocale(ctx, p.ID, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "project %s: locale %s (%s)\n", p.Name, pl.Locale, p.TableName(pl.Locale))
		return nil
	case "locales":
		if len(args) != 2 {
			return errors.New("project locales: want PROJECT")
		}
		p, err := a.svc.projects.Resolve(ctx, args[1])
		if err != nil {
			return err
		}
		list, err := a.svc.projects.ListLocales(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, l := range list {
			fmt.Fprintln(a.out, l.Locale)
		}
		return nil
	default:
		return fmt.Errorf("project: unknown subcommand %q", args[0])
	}
}

func (a *App) cmdImport(ctx context.Context, args []string) error {
	fs := newFlagSet("import")
	project := fs.String("project", "", "project name or id")
	format := fs.String("format", "", "file format, detected from the extension when empty")
	locale := fs.String("locale", "", "locale of the translations, read from the file when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *project == "" || fs.NArg() == 0 {
		return errors.New("import: want -project P FILE...")
	}
	p, err := a.svc.projects.Resolve(ctx, *project)
	if err != nil {
		return err
	}
	for _, name := range fs.Args() {
		res, err := a.svc.imports.ImportFile(ctx, apiapp.ImportRequest{ProjectID: p.ID, Filename: name, Format: *format, Locale: *locale})
		if err != nil {
			return fmt.Errorf("import %s: %w", name, err)
		}
		fmt.Fprintf(a.out, "imported %s: file %d, %d units, %d translations (%s)\n", name, res.FileID, res.Units, res.Translations, res.Locale)
	}
	return nil
}

func (a *App) cmdFiles(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("files: want PROJECT")
	}
	p, err := a.svc.projects.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	list, err := a.svc.files.ListByProject(ctx, p.ID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATH\tFORMAT\tLOCALE")
	for _, f := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.ID, f.Path, f.Format, f.Locale)
	}
	return tw.Flush()
}

func (a *App) cmdExport(ctx context.Context, args []string) error {
	fs := newFlagSet("export")
	fileID := fs.Int64("file", 0, "file id")
	locale := fs.String("locale", "", "locale to export, defaults to the file locale")
	format := fs.String("format", "", "output format: ts, csv or json")
	fallback := fs.Bool("fallback", false, "write the source where a translation is missing")
	sep := fs.String("sep", "", "csv separator: comma, semicolon or tab")
	output := fs.String("o", "", "output file or directory, stdout when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fileID <= 0 {
		return errors.New("export: -file is required")
	}
	res, err := a.svc.exports.ExportFile(ctx, apiapp.ExportFileRequest{FileID: *fileID, Locale: *locale, OverrideFormat: *format, Fallback: *fallback, Separator: *sep})
	if err != nil {
		return err
	}
	if *output == "" || *output == "-" {
		_, err := a.out.Write(res.Content)
		return err
	}
	path := *output
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, res.Filename)
	}
	if err := os.WriteFile(path, res.Content, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s\n", path)
	return nil
}

func (a *App) cmdUnits(ctx context.Context, args []string) error {
	fs := newFlagSet("units")
	fileID := fs.Int64("file", 0, "file id")
	locale := fs.String("locale", "", "locale, defaults to the file locale")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fileID <= 0 {
		return errors.New("units: -file is required")
	}
	loc := *locale
	if loc == "" {
		f, err := a.svc.files.Get(ctx, *fileID)
		if err != nil {
			return err
		}
		loc = f.Locale
	}
	texts, err := a.svc.translations.ListUnitTexts(ctx, *fileID, loc)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCONTEXT\tSOURCE\tTRANSLATION\tSTATUS")
	for _, t := range texts {
		fmt.Fprintf(tw, "%d\t%s\t%q\t%q\t%s\n", t.UnitID, t.Context, t.Source, t.Translation, t.Status)
	}
	return tw.Flush()
}

func (a *App) cmdSetTranslation(ctx context.Context, args []string) error {
	fs := newFlagSet("set-translation")
	unitID := fs.Int64("unit", 0, "unit id")
	locale := fs.String("locale", "", "locale")
	status := fs.String("status", "", "finished, unfinished or machine")
	comment := fs.String("comment", "", "translator comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *unitID <= 0 || *locale == "" || fs.NArg() == 0 {
		return errors.New("set-translation: want -unit ID -locale L TEXT...")
	}
	req := apiapp.UpsertTranslationRequest{UnitID: *unitID, Locale: *locale, Status: *status, TranslatorComment: *comment}
	if fs.NArg() == 1 {
		req.Text = fs.Arg(0)
	} else {
		// one argument per plural form
		req.NumerusForms = fs.Args()
	}
	if _, err := a.svc.translations.Upsert(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "unit %d: %s updated\n", *unitID, *locale)
	return nil
}

func (a *App) cmdProvider(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("provider: want add, list, models, test, check or delete")
	}
	switch args[0] {
	case "add":
		fs := newFlagSet("provider add")
		typ := fs.String("type", domain.ProviderOllama, "ollama or openrouter")
		name := fs.String("name", "", "provider name")
		baseURL := fs.String("url", "", "base url")
		model := fs.String("model", "", "default model")
		apiKey := fs.String("key", "", "api key")
		temperature := fs.Float64("temperature", 0, "sampling temperature")
		timeout := fs.Int("timeout", 0, "request timeout in seconds")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		opts, _ := json.Marshal(domain.ProviderOptions{Temperature: *temperature, TimeoutSeconds: *timeout})
		p, err := a.svc.providers.Create(ctx, domain.Provider{Type: *typ, Name: *name, BaseURL: *baseURL, Model: *model, APIKey: *apiKey, OptionsRaw: string(opts)})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "provider %d %s (%s, %s)\n", p.ID, p.Name, p.Type, p.Model)
		return nil
	case "list":
		list, err := a.svc.providers.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTYPE\tMODEL\tURL\tKEY")
		for _, p := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Type, p.Model, p.BaseURL, p.APIKey)
		}
		return tw.Flush()
	case "check":
		health, err := a.svc.providers.HealthCheck(ctx)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(health))
		for n := range health {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			status := "ok"
			if health[n] != nil {
				status = health[n].Error()
			}
			fmt.Fprintf(a.out, "%s: %s\n", n, status)
		}
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("provider %s: want ID", args[0])
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	switch args[0] {
	case "models":
		models, err := a.svc.providers.ListModels(ctx, id)
		if err != nil {
			return err
		}
		for _, m := range models {
			if m.Description != "" {
				fmt.Fprintf(a.out, "%s\t%s\n", m.Name, m.Description)
				continue
			}
			fmt.Fprintln(a.out, m.Name)
		}
		return nil
	case "test":
		res, err := a.svc.providers.Test(ctx, id)
		if err != nil {
			return err
		}
		if !res.Ok {
			return fmt.Errorf("provider %d: %s", id, res.Error)
		}
		fmt.Fprintf(a.out, "ok: %q\n", res.Translation)
		return nil
	case "delete":
		if _, err := a.svc.providers.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "provider %d deleted\n", id)
		return nil
	default:
		return fmt.Errorf("provider: unknown subcommand %q", args[0])
	}
}

func (a *App) cmdTemplate(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "set" {
		return errors.New("template: want set")
	}
	fs := newFlagSet("template set")
	scope := fs.String("scope", domain.ScopeGlobal, "global, project or provider")
	ref := fs.Int64("ref", 0, "project or provider id")
	role := fs.String("role", "", "system or user")
	body := fs.String("body", "", "template body, read from FILE when empty")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	text := *body
	if text == "" {
		if fs.NArg() != 1 {
			return errors.New("template set: want -body or FILE")
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			return err
		}
		text = string(b)
	}
	req := apiapp.SetTemplateRequest{Scope: *scope, Role: *role, Body: text}
	if *ref > 0 {
		req.RefID = ref
	}
	t, err := a.svc.templates.Set(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "template %d: %s %s\n", t.ID, t.Scope, t.Role)
	return nil
}

func (a *App) cmdFill(ctx context.Context, args []string) error {
	fs := newFlagSet("fill")
	project := fs.String("project", "", "project name or id")
	providerID := fs.Int64("provider", 0, "provider id")
	fileID := fs.Int64("file", 0, "file id")
	locales := fs.String("locale", "", "comma separated target locales, defaults to the file locale")
	model := fs.String("model", "", "model, defaults to the provider model")
	units := fs.String("units", "", "comma separated unit ids, the whole file when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *project == "" || *providerID <= 0 || (*fileID <= 0 && *units == "") {
		return errors.New("fill: want -project P -provider ID and -file ID or -units")
	}
	p, err := a.svc.projects.Resolve(ctx, *project)
	if err != nil {
		return err
	}
	targets := splitList(*locales)
	if len(targets) == 0 && *fileID > 0 {
		f, err := a.svc.files.Get(ctx, *fileID)
		if err != nil {
			return err
		}
		if f.Locale != "" {
			targets = []string{f.Locale}
		}
	}
	if len(targets) == 0 {
		return errors.New("fill: no target locale")
	}

	var start apiapp.StartJobResponse
	if *units != "" {
		var ids []int64
		for _, s := range splitList(*units) {
			id, err := parseID(s)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		start, err = a.svc.jobs.StartTranslateUnits(ctx, apiapp.StartTranslateUnitsRequest{ProjectID: p.ID, ProviderID: *providerID, UnitIDs: ids, Locales: targets, Model: *model})
	} else {
		start, err = a.svc.jobs.StartTranslateFile(ctx, apiapp.StartTranslateFileRequest{ProjectID: p.ID, ProviderID: *providerID, FileID: *fileID, Locales: targets, Model: *model})
	}
	if err != nil {
		return err
	}
	if err := a.svc.jobs.Wait(ctx, start.JobID); err != nil {
		a.svc.jobs.Cancel(start.JobID)
		_ = a.svc.jobs.Wait(context.Background(), start.JobID)
		return fmt.Errorf("job %d: %w", start.JobID, err)
	}
	job, err := a.svc.jobs.Get(ctx, start.JobID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "job %d %s: %d/%d\n", job.ID, job.Status, job.Progress, job.Total)
	if job.Status == "failed" {
		return fmt.Errorf("job %d failed", job.ID)
	}
	return nil
}

func (a *App) cmdJobs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		fs := newFlagSet("jobs list")
		limit := fs.Int("limit", 20, "number of jobs")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		list, err := a.svc.jobs.List(ctx, *limit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tPROGRESS")
		for _, j := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\n", j.ID, j.Type, j.Status, j.Progress, j.Total)
		}
		return tw.Flush()
	case "show":
		if len(args) != 2 {
			return errors.New("jobs show: want ID")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		job, err := a.svc.jobs.Get(ctx, id)
		if err != nil {
			return err
		}
		if job == nil {
			return fmt.Errorf("job %d not found", id)
		}
		fmt.Fprintf(a.out, "job %d %s %s: %d/%d\n", job.ID, job.Type, job.Status, job.Progress, job.Total)
		items, err := a.svc.jobs.Items(ctx, id)
		if err != nil {
			return err
		}
		for _, it := range items {
			var unit int64
			var loc string
			if it.UnitID != nil {
				unit = *it.UnitID
			}
			if it.Locale != nil {
				loc = *it.Locale
			}
			line := fmt.Sprintf("  unit %d %s: %s", unit, loc, it.Status)
			if it.Error != "" {
				line += " (" + it.Error + ")"
			}
			fmt.Fprintln(a.out, line)
		}
		logs, err := a.svc.jobs.Logs(ctx, id, 50)
		if err != nil {
			return err
		}
		for _, l := range logs {
			fmt.Fprintf(a.out, "  %s %s %s\n", l.Time, l.Level, l.Message)
		}
		return nil
	default:
		return fmt.Errorf("jobs: unknown subcommand %q", args[0])
	}
}

func (a *App) cmdLocale(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"get"}
	}
	switch args[0] {
	case "get":
		stored, err := a.svc.locale.Get(ctx)
		if err != nil {
			return err
		}
		effective := i18n.ResolveLocale(stored, a.cfg.LocaleCandidates()...)
		if stored == "" {
			stored = "(unset)"
		}
		fmt.Fprintf(a.out, "stored: %s\neffective: %s\n", stored, effective)
		return nil
	case "set":
		if len(args) != 2 {
			return errors.New("locale set: want LOCALE")
		}
		norm, err := a.svc.locale.Set(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "language: %s\n", norm)
		return nil
	case "clear":
		return a.svc.locale.Clear(ctx)
	default:
		return fmt.Errorf("locale: unknown subcommand %q", args[0])
	}
}

// logEmitter prints job progress through the standard logger.
type logEmitter struct{}

func (logEmitter) Emit(name string, payload any) {
	m, _ := payload.(map[string]any)
	switch name {
	case "job.progress":
		log.Printf("job %v: %v/%v %v", m["job_id"], m["done"], m["total"], m["status"])
	case "job.log":
		if m["level"] == "error" {
			log.Printf("job %v: %v", m["job_id"], m["message"])
		}
	}
}
