package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"tskit/internal/domain"
)

type ProjectRepo struct{ *Repo }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{NewRepo(db)} }

var projectCols = []string{"id", "name", "source_lang", "created_at", "updated_at"}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	q := r.SQ.Insert("projects").Columns("name", "source_lang", "created_at", "updated_at").
		Values(p.Name, p.SourceLang, stamp(now), stamp(now))
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	p.ID, _ = res.LastInsertId()
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (r *ProjectRepo) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return r.getWhere(ctx, sq.Eq{"id": id})
}

// GetByName returns the project for a translation prefix, or nil if none.
func (r *ProjectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	p, err := r.getWhere(ctx, sq.Eq{"name": name})
	if noRows(err) {
		return nil, nil
	}
	return p, err
}

func (r *ProjectRepo) getWhere(ctx context.Context, where sq.Eq) (*domain.Project, error) {
	sqlStr, args, _ := r.SQ.Select(projectCols...).From("projects").Where(where).Limit(1).ToSql()
	return scanProject(r.DB.QueryRowContext(ctx, sqlStr, args...))
}

func (r *ProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	sqlStr, args, _ := r.SQ.Select(projectCols...).From("projects").OrderBy("name").ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	q := r.SQ.Update("projects").Set("name", p.Name).Set("source_lang", p.SourceLang).Set("updated_at", stamp(now)).
		Where(sq.Eq{"id": p.ID})
	sqlStr, args, _ := q.ToSql()
	if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, _ := r.SQ.Delete("projects").Where(sq.Eq{"id": id}).ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// AddLocale registers a target locale; adding one twice is a no-op.
func (r *ProjectRepo) AddLocale(ctx context.Context, pl *domain.ProjectLocale) error {
	now := time.Now().UTC()
	q := r.SQ.Insert("project_locales").Columns("project_id", "locale", "created_at").
		Values(pl.ProjectID, pl.Locale, stamp(now)).
		Suffix("ON CONFLICT(project_id, locale) DO NOTHING")
	sqlStr, args, _ := q.ToSql()
	if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	row := r.DB.QueryRowContext(ctx, `SELECT id FROM project_locales WHERE project_id = ? AND locale = ?`, pl.ProjectID, pl.Locale)
	if err := row.Scan(&pl.ID); err != nil {
		return err
	}
	pl.CreatedAt = now
	return nil
}

func (r *ProjectRepo) ListLocales(ctx context.Context, projectID int64) ([]*domain.ProjectLocale, error) {
	q := r.SQ.Select("id", "project_id", "locale", "created_at").From("project_locales").
		Where(sq.Eq{"project_id": projectID}).OrderBy("locale")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectLocale
	for rows.Next() {
		var pl domain.ProjectLocale
		var created string
		if err := rows.Scan(&pl.ID, &pl.ProjectID, &pl.Locale, &created); err != nil {
			return nil, err
		}
		pl.CreatedAt = parseStamp(created)
		out = append(out, &pl)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var p domain.Project
	var created, updated string
	if err := s.Scan(&p.ID, &p.Name, &p.SourceLang, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt, p.UpdatedAt = parseStamp(created), parseStamp(updated)
	return &p, nil
}
