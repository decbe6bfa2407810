package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"tskit/internal/domain"
)

type TemplateRepo struct{ *Repo }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{NewRepo(db)} }

// GetEffective returns the template for scope and refID, falling back to the
// global one. It returns nil when neither is stored.
func (r *TemplateRepo) GetEffective(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error) {
	if domain.ScopedTo(scope) && refID != nil {
		t, err := r.getOne(ctx, scope, refID, typ, role)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}
	return r.getOne(ctx, domain.ScopeGlobal, nil, typ, role)
}

func (r *TemplateRepo) getOne(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error) {
	b := r.SQ.Select("id", "scope", "ref_id", "type", "role", "body", "is_default", "updated_at").From("templates").
		Where(sq.Eq{"scope": scope, "type": typ, "role": role}).
		OrderBy("id DESC").Limit(1)
	if refID != nil {
		b = b.Where(sq.Eq{"ref_id": *refID})
	} else {
		b = b.Where("ref_id IS NULL")
	}
	sqlStr, args, _ := b.ToSql()
	var t domain.Template
	var ref sql.NullInt64
	var updated string
	err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&t.ID, &t.Scope, &ref, &t.Type, &t.Role, &t.Body, &t.IsDefault, &updated)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.RefID = nullInt(ref)
	t.UpdatedAt = parseStamp(updated)
	return &t, nil
}

// Upsert stores a new revision; the latest revision per scope wins.
func (r *TemplateRepo) Upsert(ctx context.Context, t *domain.Template) error {
	q := r.SQ.Insert("templates").Columns("scope", "ref_id", "type", "role", "body", "is_default").
		Values(t.Scope, t.RefID, t.Type, t.Role, t.Body, t.IsDefault)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	t.ID, _ = res.LastInsertId()
	return nil
}
