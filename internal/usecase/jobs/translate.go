package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"tskit/internal/domain"
	"tskit/internal/ports"
	"tskit/internal/usecase/translator"
)

const (
	TypeTranslateFile  = "translate_file"
	TypeTranslateUnits = "translate_units"

	StatusQueued   = "queued"
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// Translator produces the machine translation of one unit.
type Translator interface {
	TranslateOne(ctx context.Context, a translator.TranslateArgs) (string, error)
}

type Deps struct {
	Jobs         ports.JobRepository
	Units        ports.UnitRepository
	Providers    ports.ProviderRepository
	Projects     ports.ProjectRepository
	Translations ports.TranslationRepository
	// BuildProvider is used to resolve model labels to ids
	BuildProvider func(*domain.Provider) (ports.Provider, error)
}

type Options struct {
	Workers     int
	ItemTimeout time.Duration
}

type Runner struct {
	d      Deps
	trans  Translator
	opts   Options
	mu     sync.Mutex
	active map[int64]context.CancelFunc
	done   map[int64]chan struct{}
	em     EventEmitter
}

func NewRunner(d Deps, trans Translator, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.ItemTimeout <= 0 {
		opts.ItemTimeout = 60 * time.Second
	}
	return &Runner{d: d, trans: trans, opts: opts, active: map[int64]context.CancelFunc{}, done: map[int64]chan struct{}{}}
}

type EventEmitter interface {
	Emit(name string, payload any)
}

func (r *Runner) SetEmitter(em EventEmitter) { r.em = em }

type TranslateFileParams struct {
	FileID        int64    `json:"file_id"`
	TargetLocales []string `json:"target_locales"`
	Model         string   `json:"model"`
}

// TranslateUnitsParams describes a batch of specific units to translate.
type TranslateUnitsParams struct {
	UnitIDs []int64  `json:"unit_ids"`
	Locales []string `json:"locales"`
	Model   string   `json:"model"`
}

type workItem struct {
	unit     *domain.Unit
	locale   string
	existing *domain.Translation
}

// StartTranslateFile queues every unit of a file that has no translation yet
// in one of the target locales.
func (r *Runner) StartTranslateFile(ctx context.Context, projectID, providerID int64, p TranslateFileParams) (int64, error) {
	p.Model = r.resolveModel(ctx, providerID, p.Model)
	units, err := r.d.Units.ListByFile(ctx, p.FileID)
	if err != nil {
		return 0, fmt.Errorf("load units: %w", err)
	}
	var items []workItem
	for _, tgt := range p.TargetLocales {
		trs, err := r.d.Translations.ListByFileLocale(ctx, p.FileID, tgt)
		if err != nil {
			return 0, fmt.Errorf("load %s translations: %w", tgt, err)
		}
		have := make(map[int64]*domain.Translation, len(trs))
		for _, t := range trs {
			have[t.UnitID] = t
		}
		for _, u := range units {
			if t := have[u.ID]; needsTranslation(u, t) {
				items = append(items, workItem{unit: u, locale: tgt, existing: t})
			}
		}
	}
	return r.start(ctx, TypeTranslateFile, projectID, providerID, p, p.Model, items)
}

// StartTranslateUnits creates a single job for the given units, skipping the
// locales they are already translated to.
func (r *Runner) StartTranslateUnits(ctx context.Context, projectID, providerID int64, p TranslateUnitsParams) (int64, error) {
	p.Model = r.resolveModel(ctx, providerID, p.Model)
	var items []workItem
	for _, uid := range p.UnitIDs {
		u, err := r.d.Units.Get(ctx, uid)
		if err != nil {
			return 0, fmt.Errorf("load unit %d: %w", uid, err)
		}
		for _, tgt := range p.Locales {
			t, err := r.d.Translations.Get(ctx, uid, tgt)
			if err != nil {
				return 0, fmt.Errorf("load translation %d/%s: %w", uid, tgt, err)
			}
			if needsTranslation(u, t) {
				items = append(items, workItem{unit: u, locale: tgt, existing: t})
			}
		}
	}
	return r.start(ctx, TypeTranslateUnits, projectID, providerID, p, p.Model, items)
}

// needsTranslation reports whether u has no usable text in t. Messages that
// lupdate marked obsolete or vanished are left alone.
func needsTranslation(u *domain.Unit, t *domain.Translation) bool {
	if strings.TrimSpace(u.SourceText) == "" {
		return false
	}
	if t == nil {
		return true
	}
	if !t.Status.Active() {
		return false
	}
	if strings.TrimSpace(t.Text) != "" {
		return false
	}
	for _, f := range t.NumerusForms {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func (r *Runner) start(ctx context.Context, typ string, projectID, providerID int64, params any, model string, items []workItem) (int64, error) {
	var project *domain.Project
	if r.d.Projects != nil {
		project, _ = r.d.Projects.Get(ctx, projectID)
	}
	paramsJSON, _ := json.Marshal(params)
	job := &domain.Job{Type: typ, Status: StatusQueued, ProjectID: &projectID, ProviderID: &providerID, ParamsRaw: string(paramsJSON), Total: len(items)}
	id, err := r.d.Jobs.Create(ctx, job)
	if err != nil {
		return 0, err
	}
	_ = r.d.Jobs.UpdateProgress(ctx, id, 0, len(items), StatusRunning)
	r.emit("job.started", map[string]any{"job_id": id, "total": len(items), "model": model, "provider_id": providerID})
	r.log(ctx, id, "info", fmt.Sprintf("job started: provider=%d model=%s items=%d workers=%d", providerID, model, len(items), r.opts.Workers))

	cctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.mu.Lock()
	r.active[id] = cancel
	r.done[id] = done
	r.mu.Unlock()
	go func() {
		defer close(done)
		defer r.release(id)
		r.run(cctx, id, providerID, model, project, items)
	}()
	return id, nil
}

func (r *Runner) run(ctx context.Context, jobID, providerID int64, model string, project *domain.Project, items []workItem) {
	// progress must be recorded even after the job is canceled
	store := context.WithoutCancel(ctx)
	total := len(items)
	var mu sync.Mutex
	done := 0

	pool := NewWorkerPool(r.opts.Workers, total)
	pool.Start(ctx)
	for _, it := range items {
		it := it // per-iteration copy for the closure (go.mod targets go 1.21)
		err := pool.Submit(ctx, func(ctx context.Context) error {
			err := r.translateItem(ctx, store, jobID, providerID, model, project, it)
			mu.Lock()
			done++
			n := done
			mu.Unlock()
			_ = r.d.Jobs.UpdateProgress(store, jobID, n, total, StatusRunning)
			r.emit("job.progress", map[string]any{"job_id": jobID, "done": n, "total": total, "status": StatusRunning, "model": model})
			return err
		})
		if err != nil {
			break
		}
	}
	pool.Close()

	status := StatusDone
	switch {
	case ctx.Err() != nil:
		status = StatusCanceled
	case total > 0 && pool.Failed() == total:
		status = StatusFailed
	}
	mu.Lock()
	n := done
	mu.Unlock()
	_ = r.d.Jobs.UpdateProgress(store, jobID, n, total, status)
	r.log(store, jobID, "info", fmt.Sprintf("job %s: done=%d failed=%d total=%d", status, n, pool.Failed(), total))
	r.emit("job.progress", map[string]any{"job_id": jobID, "done": n, "total": total, "status": status, "model": model})
}

func (r *Runner) translateItem(ctx, store context.Context, jobID, providerID int64, model string, project *domain.Project, it workItem) error {
	u, tgt := it.unit, it.locale
	item := &domain.JobItem{JobID: jobID, UnitID: &u.ID, Locale: &tgt, Status: StatusRunning}
	itemID, err := r.d.Jobs.AddItem(store, item)
	if err != nil {
		r.log(store, jobID, "error", fmt.Sprintf("record item %s/%q -> %s: %v", u.Context, u.SourceText, tgt, err))
	}
	r.emit("job.item.start", map[string]any{"job_id": jobID, "unit_id": u.ID, "key": u.Key, "locale": tgt, "model": model})

	args := translator.TranslateArgs{ProviderID: providerID, Unit: u, TargetLang: tgt, Model: model}
	if project != nil {
		args.Project = project.Name
		args.SourceLang = project.SourceLang
	}
	ictx, cancel := context.WithTimeout(ctx, r.opts.ItemTimeout)
	txt, err := r.trans.TranslateOne(ictx, args)
	cancel()
	if err != nil {
		_ = r.d.Jobs.UpdateItem(store, itemID, StatusFailed, err.Error())
		r.log(store, jobID, "error", fmt.Sprintf("%s/%q -> %s: %v", u.Context, u.SourceText, tgt, err))
		r.emit("job.item.done", map[string]any{"job_id": jobID, "unit_id": u.ID, "key": u.Key, "locale": tgt, "error": err.Error(), "model": model})
		return err
	}

	tr := &domain.Translation{UnitID: u.ID, Locale: tgt, Text: txt, Status: domain.StatusMachine, ProviderID: &providerID}
	if u.Numerus {
		tr.NumerusForms = []string{txt}
	}
	if it.existing != nil {
		tr.TranslatorComment = it.existing.TranslatorComment
	}
	if err := r.d.Translations.Upsert(store, tr); err != nil {
		_ = r.d.Jobs.UpdateItem(store, itemID, StatusFailed, err.Error())
		return err
	}
	_ = r.d.Jobs.UpdateItem(store, itemID, StatusDone, "")
	r.emit("job.item.done", map[string]any{"job_id": jobID, "unit_id": u.ID, "key": u.Key, "locale": tgt, "text": txt, "model": model})
	return nil
}

// resolveModel falls back to the provider's default model and maps
// human-readable labels to model ids.
func (r *Runner) resolveModel(ctx context.Context, providerID int64, model string) string {
	if model == "" {
		if prov, err := r.d.Providers.Get(ctx, providerID); err == nil && prov != nil {
			model = prov.Model
		}
	}
	if norm, err := r.normalizeModel(ctx, providerID, model); err == nil && norm != "" {
		model = norm
	}
	return model
}

// normalizeModel attempts to convert a possibly human-readable model label to a canonical ID
// for the specified provider. Returns the normalized model or empty string if unchanged.
func (r *Runner) normalizeModel(ctx context.Context, providerID int64, model string) (string, error) {
	m := strings.TrimSpace(model)
	if m == "" || r.d.BuildProvider == nil {
		return "", nil
	}
	prov, err := r.d.Providers.Get(ctx, providerID)
	if err != nil || prov == nil {
		return "", err
	}
	if strings.ToLower(prov.Type) != domain.ProviderOpenRouter {
		return "", nil
	}
	// Heuristic: labels usually have spaces/parentheses; IDs don't
	if !strings.ContainsAny(m, " ()") {
		return "", nil
	}
	adapter, err := r.d.BuildProvider(prov)
	if err != nil {
		return "", err
	}
	list, err := adapter.ListModels(ctx)
	if err != nil {
		return "", err
	}
	for _, mi := range list {
		if strings.EqualFold(mi.Name, m) || strings.EqualFold(mi.Description, m) {
			return mi.Name, nil
		}
	}
	return "", nil
}

func (r *Runner) log(ctx context.Context, jobID int64, level, message string) {
	_ = r.d.Jobs.AddLog(ctx, &domain.JobLog{JobID: jobID, Level: level, Message: message})
	r.emit("job.log", map[string]any{"job_id": jobID, "level": level, "message": message, "ts": time.Now().UTC().Format(time.RFC3339)})
}

func (r *Runner) emit(name string, payload any) {
	if r.em != nil {
		r.em.Emit(name, payload)
	}
}

func (r *Runner) release(jobID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.active[jobID]; ok {
		cancel()
		delete(r.active, jobID)
	}
}

// Wait blocks until the job started by this runner has finished.
func (r *Runner) Wait(ctx context.Context, jobID int64) error {
	r.mu.Lock()
	done, ok := r.done[jobID]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %d is not running in this process", jobID)
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) Cancel(jobID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.active[jobID]; ok {
		cancel()
		delete(r.active, jobID)
		return true
	}
	return false
}
