package documents

import (
	"context"
	"database/sql"
	"errors"

	"resume-builder/resume/model"
)

// PGRepo implements Repo using Postgres. Deletes are soft.
type PGRepo struct {
	DB *sql.DB
}

// NewPGRepo constructs a PGRepo.
func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

const recordColumns = `id, owner_id, kind, title, template_key, content, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO documents (`+recordColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID,
		rec.OwnerID,
		string(rec.Kind),
		rec.Title,
		rec.TemplateKey,
		[]byte(rec.Content),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, ownerID string, kind model.Kind, id string) (Record, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+recordColumns+`
FROM documents
WHERE id = $1 AND owner_id = $2 AND kind = $3 AND deleted_at IS NULL`, id, ownerID, string(kind))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (r *PGRepo) List(ctx context.Context, ownerID string, kind model.Kind, limit, offset int) ([]Record, error) {
	if offset < 0 {
		offset = 0
	}
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+recordColumns+`
FROM documents
WHERE owner_id = $1 AND kind = $2 AND deleted_at IS NULL
ORDER BY updated_at DESC, id
LIMIT $3 OFFSET $4`, ownerID, string(kind), limitArg, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *PGRepo) Save(ctx context.Context, rec Record) (Record, error) {
	row := r.DB.QueryRowContext(ctx, `
UPDATE documents
SET title = $4, template_key = $5, content = $6, updated_at = now()
WHERE id = $1 AND owner_id = $2 AND kind = $3 AND deleted_at IS NULL
RETURNING `+recordColumns,
		rec.ID,
		rec.OwnerID,
		string(rec.Kind),
		rec.Title,
		rec.TemplateKey,
		[]byte(rec.Content),
	)
	saved, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return saved, err
}

func (r *PGRepo) Delete(ctx context.Context, ownerID string, kind model.Kind, id string) error {
	res, err := r.DB.ExecContext(ctx, `
UPDATE documents SET deleted_at = now()
WHERE id = $1 AND owner_id = $2 AND kind = $3 AND deleted_at IS NULL`, id, ownerID, string(kind))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CountByKind(ctx context.Context, ownerID string) (map[model.Kind]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT kind, COUNT(*)
FROM documents
WHERE owner_id = $1 AND deleted_at IS NULL
GROUP BY kind`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Kind]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[model.Kind(kind)] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec     Record
		kind    string
		content []byte
	)
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&kind,
		&rec.Title,
		&rec.TemplateKey,
		&content,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return Record{}, err
	}
	rec.Kind = model.Kind(kind)
	rec.Content = content
	return rec, nil
}
