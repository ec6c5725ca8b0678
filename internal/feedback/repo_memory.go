package feedback

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps feedback in process.
type MemoryRepo struct {
	mu    sync.RWMutex
	items []Feedback
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Create(ctx context.Context, f Feedback) (Feedback, error) {
	if err := ctx.Err(); err != nil {
		return Feedback{}, err
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.items = append(r.items, f)
	r.mu.Unlock()
	return f, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []Feedback
	for _, f := range r.items {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) MarkTriaged(ctx context.Context, id string, priority Priority, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			t := at.UTC()
			r.items[i].Priority = priority
			r.items[i].TriagedAt = &t
			return nil
		}
	}
	return ErrNotFound
}
