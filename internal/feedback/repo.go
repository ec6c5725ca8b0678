package feedback

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("feedback not found")

// Repo persists feedback.
type Repo interface {
	Create(ctx context.Context, f Feedback) (Feedback, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Feedback, error)
	// MarkTriaged records the priority. Marking twice keeps the latest.
	MarkTriaged(ctx context.Context, id string, priority Priority, at time.Time) error
}
