package ports

import (
	"context"

	"tskit/internal/domain"
)

// Lookups return (nil, nil) when the row does not exist.

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id int64) (*domain.Project, error)
	GetByName(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
	// AddLocale is a no-op for a locale the project already has.
	AddLocale(ctx context.Context, pl *domain.ProjectLocale) error
	ListLocales(ctx context.Context, projectID int64) ([]*domain.ProjectLocale, error)
}

// FileRepository stores imported tables. Deleting a file drops its units
// and their translations.
type FileRepository interface {
	Create(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, id int64) (*domain.File, error)
	ListByProject(ctx context.Context, projectID int64) ([]*domain.File, error)
	Delete(ctx context.Context, id int64) error
}

// UnitRepository keeps the source side of messages in file order.
type UnitRepository interface {
	// UpsertBatch matches units on (file, key) and fills in their IDs.
	UpsertBatch(ctx context.Context, units []*domain.Unit) error
	Get(ctx context.Context, id int64) (*domain.Unit, error)
	ListByFile(ctx context.Context, fileID int64) ([]*domain.Unit, error)
}

type TranslationRepository interface {
	Get(ctx context.Context, unitID int64, locale string) (*domain.Translation, error)
	Upsert(ctx context.Context, t *domain.Translation) error
	ListByFileLocale(ctx context.Context, fileID int64, locale string) ([]*domain.Translation, error)
}

type ProviderRepository interface {
	Get(ctx context.Context, id int64) (*domain.Provider, error)
	List(ctx context.Context) ([]*domain.Provider, error)
	Create(ctx context.Context, p *domain.Provider) error
	Update(ctx context.Context, p *domain.Provider) error
	Delete(ctx context.Context, id int64) error
	// SaveModelCache replaces the stored model list of a provider.
	SaveModelCache(ctx context.Context, providerID int64, names []string) error
	ListModelCache(ctx context.Context, providerID int64) ([]*domain.ProviderModel, error)
}

// JobRepository records fill jobs with their per-message items and log.
type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) (int64, error)
	Get(ctx context.Context, jobID int64) (*domain.Job, error)
	List(ctx context.Context, limit int) ([]*domain.Job, error)
	Delete(ctx context.Context, jobID int64) error
	UpdateProgress(ctx context.Context, jobID int64, done, total int, status string) error

	AddItem(ctx context.Context, ji *domain.JobItem) (int64, error)
	UpdateItem(ctx context.Context, itemID int64, status, errMsg string) error
	ListItems(ctx context.Context, jobID int64) ([]*domain.JobItem, error)

	AddLog(ctx context.Context, jl *domain.JobLog) error
	ListLogs(ctx context.Context, jobID int64, limit int) ([]*domain.JobLog, error)
}

type TemplateRepository interface {
	// GetEffective falls back to the global template of typ and role.
	GetEffective(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error)
	Upsert(ctx context.Context, t *domain.Template) error
}

type CacheRepository interface {
	Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error)
	Put(ctx context.Context, e *domain.CacheEntry) error
}

// SettingsRepository is a string key/value store. Get returns "" for a
// missing key.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
