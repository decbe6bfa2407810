package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"tskit/internal/domain"
)

type TranslationRepo struct{ *Repo }

func NewTranslationRepo(db *sql.DB) *TranslationRepo { return &TranslationRepo{NewRepo(db)} }

var translationCols = []string{
	"t.id", "t.unit_id", "t.locale", "t.text", "t.numerus_json", "t.translator_comment",
	"t.status", "t.provider_id", "t.confidence", "t.created_at", "t.updated_at",
}

func (r *TranslationRepo) Upsert(ctx context.Context, t *domain.Translation) error {
	now := time.Now().UTC()
	q := r.SQ.Insert("translations").
		Columns("unit_id", "locale", "text", "numerus_json", "translator_comment", "status", "provider_id", "confidence", "created_at", "updated_at").
		Values(t.UnitID, t.Locale, t.Text, encodeJSON(t.NumerusForms), t.TranslatorComment, string(t.Status), t.ProviderID, t.Confidence, stamp(now), stamp(now)).
		Suffix(`ON CONFLICT(unit_id, locale) DO UPDATE SET text=excluded.text, numerus_json=excluded.numerus_json,
			translator_comment=excluded.translator_comment, status=excluded.status, provider_id=excluded.provider_id,
			confidence=excluded.confidence, updated_at=excluded.updated_at RETURNING id`)
	sqlStr, args, _ := q.ToSql()
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&t.ID); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

// Get returns nil when the unit has no translation for locale.
func (r *TranslationRepo) Get(ctx context.Context, unitID int64, locale string) (*domain.Translation, error) {
	q := r.SQ.Select(translationCols...).From("translations t").
		Where(sq.Eq{"t.unit_id": unitID, "t.locale": locale}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	t, err := scanTranslation(r.DB.QueryRowContext(ctx, sqlStr, args...))
	if noRows(err) {
		return nil, nil
	}
	return t, err
}

func (r *TranslationRepo) ListByFileLocale(ctx context.Context, fileID int64, locale string) ([]*domain.Translation, error) {
	q := r.SQ.Select(translationCols...).
		From("translations t").Join("units u ON u.id = t.unit_id").
		Where(sq.Eq{"u.file_id": fileID, "t.locale": locale}).OrderBy("u.position", "u.id")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTranslation(s scanner) (*domain.Translation, error) {
	var t domain.Translation
	var forms, status, created, updated string
	var prov sql.NullInt64
	var conf sql.NullFloat64
	if err := s.Scan(&t.ID, &t.UnitID, &t.Locale, &t.Text, &forms, &t.TranslatorComment,
		&status, &prov, &conf, &created, &updated); err != nil {
		return nil, err
	}
	t.NumerusForms = decodeJSON[string](forms)
	t.Status = domain.Status(status)
	t.ProviderID = nullInt(prov)
	if conf.Valid {
		v := conf.Float64
		t.Confidence = &v
	}
	t.CreatedAt, t.UpdatedAt = parseStamp(created), parseStamp(updated)
	return &t, nil
}
