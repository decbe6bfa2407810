package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"tskit/internal/domain"
)

type FileRepo struct{ *Repo }
type UnitRepo struct{ *Repo }

func NewFileRepo(db *sql.DB) *FileRepo { return &FileRepo{NewRepo(db)} }
func NewUnitRepo(db *sql.DB) *UnitRepo { return &UnitRepo{NewRepo(db)} }

var fileCols = []string{"id", "project_id", "path", "format", "locale", "hash", "created_at"}

func (r *FileRepo) Create(ctx context.Context, f *domain.File) error {
	now := time.Now().UTC()
	q := r.SQ.Insert("files").Columns("project_id", "path", "format", "locale", "hash", "created_at").
		Values(f.ProjectID, f.Path, f.Format, f.Locale, f.Hash, stamp(now))
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	f.ID, _ = res.LastInsertId()
	f.CreatedAt = now
	return nil
}

func (r *FileRepo) Get(ctx context.Context, id int64) (*domain.File, error) {
	sqlStr, args, _ := r.SQ.Select(fileCols...).From("files").Where(sq.Eq{"id": id}).ToSql()
	return scanFile(r.DB.QueryRowContext(ctx, sqlStr, args...))
}

func (r *FileRepo) ListByProject(ctx context.Context, projectID int64) ([]*domain.File, error) {
	sqlStr, args, _ := r.SQ.Select(fileCols...).From("files").Where(sq.Eq{"project_id": projectID}).OrderBy("id DESC").ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FileRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, _ := r.SQ.Delete("files").Where(sq.Eq{"id": id}).ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func scanFile(s scanner) (*domain.File, error) {
	var f domain.File
	var created string
	if err := s.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Format, &f.Locale, &f.Hash, &created); err != nil {
		return nil, err
	}
	f.CreatedAt = parseStamp(created)
	return &f, nil
}

var unitCols = []string{
	"id", "file_id", "key", "context", "message_id", "source_text", "old_source",
	"comment", "old_comment", "extra_comment", "numerus", "locations_json", "position", "created_at",
}

// UpsertBatch inserts units keyed by (file_id, key) and fills in their ids.
func (r *UnitRepo) UpsertBatch(ctx context.Context, units []*domain.Unit) error {
	if len(units) == 0 {
		return nil
	}
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, u := range units {
			q := r.SQ.Insert("units").
				Columns("file_id", "key", "context", "message_id", "source_text", "old_source",
					"comment", "old_comment", "extra_comment", "numerus", "locations_json", "position").
				Values(u.FileID, u.Key, u.Context, u.MessageID, u.SourceText, u.OldSource,
					u.Comment, u.OldComment, u.ExtraComment, u.Numerus, encodeJSON(u.Locations), u.Position).
				Suffix(`ON CONFLICT(file_id, key) DO UPDATE SET context=excluded.context, message_id=excluded.message_id,
					source_text=excluded.source_text, old_source=excluded.old_source, comment=excluded.comment,
					old_comment=excluded.old_comment, extra_comment=excluded.extra_comment, numerus=excluded.numerus,
					locations_json=excluded.locations_json, position=excluded.position RETURNING id`)
			sqlStr, args, _ := q.ToSql()
			if err := tx.QueryRowContext(ctx, sqlStr, args...).Scan(&u.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByFile returns the units of a file in document order.
func (r *UnitRepo) ListByFile(ctx context.Context, fileID int64) ([]*domain.Unit, error) {
	sqlStr, args, _ := r.SQ.Select(unitCols...).From("units").Where(sq.Eq{"file_id": fileID}).OrderBy("position", "id").ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UnitRepo) Get(ctx context.Context, id int64) (*domain.Unit, error) {
	sqlStr, args, _ := r.SQ.Select(unitCols...).From("units").Where(sq.Eq{"id": id}).Limit(1).ToSql()
	return scanUnit(r.DB.QueryRowContext(ctx, sqlStr, args...))
}

func scanUnit(s scanner) (*domain.Unit, error) {
	var u domain.Unit
	var locs, created string
	if err := s.Scan(&u.ID, &u.FileID, &u.Key, &u.Context, &u.MessageID, &u.SourceText, &u.OldSource,
		&u.Comment, &u.OldComment, &u.ExtraComment, &u.Numerus, &locs, &u.Position, &created); err != nil {
		return nil, err
	}
	u.Locations = decodeJSON[domain.Location](locs)
	u.CreatedAt = parseStamp(created)
	return &u, nil
}
