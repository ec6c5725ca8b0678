package subscriptions

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a user has no subscription record.
var ErrNotFound = errors.New("subscription not found")

// Repo loads and stores subscription records.
type Repo interface {
	Get(ctx context.Context, userID string) (UserSubscription, error)
	Upsert(ctx context.Context, sub UserSubscription) (UserSubscription, error)
}
