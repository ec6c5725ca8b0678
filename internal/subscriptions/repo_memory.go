package subscriptions

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps subscriptions in process memory.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]UserSubscription
}

// NewMemoryRepo constructs an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]UserSubscription)}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (UserSubscription, error) {
	if err := ctx.Err(); err != nil {
		return UserSubscription{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.data[userID]
	if !ok {
		return UserSubscription{}, ErrNotFound
	}
	return sub, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, sub UserSubscription) (UserSubscription, error) {
	if err := ctx.Err(); err != nil {
		return UserSubscription{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.data[sub.UserID]; ok {
		sub.CreatedAt = existing.CreatedAt
	} else {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	r.data[sub.UserID] = sub
	return sub, nil
}
