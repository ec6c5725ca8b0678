package documents

import (
	"context"

	"resume-builder/resume/model"
)

// Repo persists document records keyed by (id, owner). Records owned by
// someone else, of another kind, or deleted are reported as ErrNotFound.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	Get(ctx context.Context, ownerID string, kind model.Kind, id string) (Record, error)
	List(ctx context.Context, ownerID string, kind model.Kind, limit, offset int) ([]Record, error)
	// Save overwrites content unconditionally; the last writer wins.
	Save(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, ownerID string, kind model.Kind, id string) error
	CountByKind(ctx context.Context, ownerID string) (map[model.Kind]int, error)
}
