package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// SettingsRepo is a key/value store for user preferences such as
// window/language.
type SettingsRepo struct{ *Repo }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{NewRepo(db)} }

// Get returns "" for keys that were never set.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	sqlStr, args, _ := r.SQ.Select("value").From("settings").Where(sq.Eq{"key": key}).ToSql()
	var v string
	err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&v)
	if noRows(err) {
		return "", nil
	}
	return v, err
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	q := r.SQ.Insert("settings").Columns("key", "value").Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	sqlStr, args, _ := r.SQ.Delete("settings").Where(sq.Eq{"key": key}).ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
