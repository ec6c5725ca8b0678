package feedback

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/queue"
	"resume-builder/internal/shared/telemetry"
)

// MessageType tags feedback envelopes on the queue.
const MessageType = "feedback.submitted"

// Service records feedback and forwards it for triage when a queue is set.
type Service struct {
	Repo  Repo
	Queue queue.Client
	Now   func() time.Time
}

func NewService(repo Repo, q queue.Client) *Service {
	return &Service{Repo: repo, Queue: q, Now: time.Now}
}

// Submit stores the feedback. Forwarding is best effort: a queue failure is
// logged and the stored feedback is still returned.
func (s *Service) Submit(ctx context.Context, userID, requestID string, in Input) (Feedback, error) {
	f, err := s.Repo.Create(ctx, Feedback{
		ID:         uuid.NewString(),
		UserID:     userID,
		Rating:     in.Rating,
		Message:    strings.TrimSpace(in.Message),
		Page:       strings.TrimSpace(in.Page),
		DocumentID: strings.TrimSpace(in.DocumentID),
		CreatedAt:  s.Now().UTC(),
	})
	if err != nil {
		return Feedback{}, err
	}
	if s.Queue == nil {
		return f, nil
	}

	payload, err := json.Marshal(struct {
		Feedback
		UserID string `json:"userId"`
	}{Feedback: f, UserID: f.UserID})
	if err == nil {
		err = s.Queue.Send(ctx, queue.Message{
			Type:       MessageType,
			ID:         f.ID,
			RequestID:  requestID,
			EnqueuedAt: s.Now().UTC().Format(time.RFC3339),
			Payload:    payload,
		})
	}
	if err != nil {
		telemetry.Warn("feedback.enqueue_failed", map[string]any{
			"feedback_id": f.ID,
			"request_id":  requestID,
			"error":       err,
		})
	}
	return f, nil
}

// List returns the caller's most recent feedback.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Feedback, error) {
	return s.Repo.ListByUser(ctx, userID, limit)
}
