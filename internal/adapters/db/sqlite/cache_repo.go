package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"tskit/internal/domain"
)

// CacheRepo memoizes machine translations by domain.CacheKey.
type CacheRepo struct{ *Repo }

func NewCacheRepo(db *sql.DB) *CacheRepo { return &CacheRepo{NewRepo(db)} }

func cacheWhere(k domain.CacheKey) sq.Eq {
	return sq.Eq{
		"source_text": k.Text,
		"src_lang":    k.SourceLang,
		"tgt_lang":    k.TargetLang,
		"provider":    k.Provider,
		"model":       k.Model,
	}
}

// Get returns nil on a miss.
func (r *CacheRepo) Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error) {
	sqlStr, args, _ := r.SQ.Select("id", "translation", "created_at").
		From("cache").
		Where(cacheWhere(key)).
		Limit(1).
		ToSql()
	e := domain.CacheEntry{CacheKey: key}
	var created string
	err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&e.ID, &e.Translation, &created)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.CreatedAt = parseStamp(created)
	return &e, nil
}

// Put stores e, replacing the translation of an existing key.
func (r *CacheRepo) Put(ctx context.Context, e *domain.CacheEntry) error {
	k := e.CacheKey
	sqlStr, args, _ := r.SQ.Insert("cache").
		Columns("source_text", "src_lang", "tgt_lang", "provider", "model", "translation").
		Values(k.Text, k.SourceLang, k.TargetLang, k.Provider, k.Model, e.Translation).
		Suffix("ON CONFLICT(source_text, src_lang, tgt_lang, provider, model) DO UPDATE SET translation = excluded.translation, created_at = excluded.created_at").
		ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
