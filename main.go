package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"

	dbsqlite "tskit/internal/adapters/db/sqlite"
	exportreg "tskit/internal/adapters/exporter/registry"
	parreg "tskit/internal/adapters/parser/registry"
	promptRenderer "tskit/internal/adapters/prompt"
	apiapp "tskit/internal/api/app"
	"tskit/internal/platform/config"
	exporterusecase "tskit/internal/usecase/exporter"
	"tskit/internal/usecase/importer"
	jobsusecase "tskit/internal/usecase/jobs"
	translatorusecase "tskit/internal/usecase/translator"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("tskit: ")
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("tskit: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	app := NewApp(cfg, os.Stdout)
	err = app.Run(ctx, os.Args[1:])
	app.Close()
	stop()
	if err != nil {
		config.Exitf("tskit: %v", err)
	}
}

// services holds the command-facing APIs over one database.
type services struct {
	projects     *apiapp.ProjectAPI
	files        *apiapp.FileAPI
	units        *apiapp.UnitAPI
	imports      *apiapp.ImportAPI
	exports      *apiapp.ExportAPI
	translations *apiapp.TranslationsAPI
	providers    *apiapp.ProviderAPI
	templates    *apiapp.TemplateAPI
	locale       *apiapp.LocaleAPI
	jobs         *apiapp.JobsAPI
}

func wire(db *sql.DB, cfg config.Config) *services {
	projectRepo := dbsqlite.NewProjectRepo(db)
	fileRepo := dbsqlite.NewFileRepo(db)
	unitRepo := dbsqlite.NewUnitRepo(db)
	providerRepo := dbsqlite.NewProviderRepo(db)
	templatesRepo := dbsqlite.NewTemplateRepo(db)
	cacheRepo := dbsqlite.NewCacheRepo(db)
	translationRepo := dbsqlite.NewTranslationRepo(db)
	jobRepo := dbsqlite.NewJobRepo(db)
	settingsRepo := dbsqlite.NewSettingsRepo(db)

	importSvc := importer.New(fileRepo, unitRepo, translationRepo, projectRepo, parreg.Default())
	expSvc := exporterusecase.New(fileRepo, unitRepo, translationRepo, exportreg.Default())

	providerAPI := apiapp.NewProviderAPI(providerRepo, cfg.HTTPTimeout)
	// Prompt renderer and translator service
	transSvc := translatorusecase.New(translatorusecase.Deps{
		Providers:     providerRepo,
		Cache:         cacheRepo,
		Prompt:        promptRenderer.New(templatesRepo),
		BuildProvider: providerAPI.Build,
	})

	runner := jobsusecase.NewRunner(jobsusecase.Deps{
		Jobs:          jobRepo,
		Units:         unitRepo,
		Providers:     providerRepo,
		Projects:      projectRepo,
		Translations:  translationRepo,
		BuildProvider: providerAPI.Build,
	}, transSvc, jobsusecase.Options{Workers: cfg.Workers, ItemTimeout: cfg.ItemTimeout})
	runner.SetEmitter(logEmitter{})

	return &services{
		projects:     apiapp.NewProjectAPI(projectRepo),
		files:        apiapp.NewFileAPI(fileRepo),
		units:        apiapp.NewUnitAPI(unitRepo),
		imports:      apiapp.NewImportAPI(importSvc),
		exports:      apiapp.NewExportAPI(expSvc),
		translations: apiapp.NewTranslationsAPI(translationRepo, unitRepo),
		providers:    providerAPI,
		templates:    apiapp.NewTemplateAPI(templatesRepo),
		locale:       apiapp.NewLocaleAPI(settingsRepo),
		jobs:         apiapp.NewJobsAPI(runner, jobRepo),
	}
}
