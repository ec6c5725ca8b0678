package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-builder/resume/model"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Record // id -> record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Record)}
}

func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[rec.ID]; exists {
		return ErrInvalidInput
	}
	rec.Content = cloneBytes(rec.Content)
	r.data[rec.ID] = rec
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, ownerID string, kind model.Kind, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.lookup(ownerID, kind, id)
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Content = cloneBytes(rec.Content)
	return rec, nil
}

func (r *MemoryRepo) lookup(ownerID string, kind model.Kind, id string) (Record, bool) {
	rec, ok := r.data[id]
	if !ok || rec.OwnerID != ownerID || rec.Kind != kind {
		return Record{}, false
	}
	return rec, true
}

// List returns records newest-updated first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, ownerID string, kind model.Kind, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	var recs []Record
	for _, rec := range r.data {
		if rec.OwnerID == ownerID && rec.Kind == kind {
			rec.Content = cloneBytes(rec.Content)
			recs = append(recs, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].UpdatedAt.Equal(recs[j].UpdatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
	})
	if offset >= len(recs) {
		return []Record{}, nil
	}
	end := len(recs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return recs[offset:end], nil
}

func (r *MemoryRepo) Save(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.lookup(rec.OwnerID, rec.Kind, rec.ID)
	if !ok {
		return Record{}, ErrNotFound
	}
	existing.Title = rec.Title
	existing.TemplateKey = rec.TemplateKey
	existing.Content = cloneBytes(rec.Content)
	existing.UpdatedAt = time.Now().UTC()
	r.data[rec.ID] = existing
	existing.Content = cloneBytes(existing.Content)
	return existing, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, ownerID string, kind model.Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lookup(ownerID, kind, id); !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) CountByKind(ctx context.Context, ownerID string) (map[model.Kind]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[model.Kind]int)
	for _, rec := range r.data {
		if rec.OwnerID == ownerID {
			counts[rec.Kind]++
		}
	}
	return counts, nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
