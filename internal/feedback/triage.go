package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resume-builder/internal/queue"
	"resume-builder/internal/shared/telemetry"
)

// bugWords mark a message as a defect report regardless of rating.
var bugWords = []string{"bug", "broken", "crash", "error", "lost", "cannot", "can't"}

// Classify buckets feedback for triage. Low ratings and defect reports are
// high priority; top ratings without a message are low.
func Classify(rating int, message string) Priority {
	msg := strings.ToLower(message)
	for _, w := range bugWords {
		if strings.Contains(msg, w) {
			return PriorityHigh
		}
	}
	switch {
	case rating <= 2:
		return PriorityHigh
	case rating >= 4 && strings.TrimSpace(msg) == "":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// Triage handles one feedback.submitted envelope from the queue.
func (s *Service) Triage(ctx context.Context, msg queue.Message) error {
	if msg.Type != MessageType {
		return fmt.Errorf("%w: unexpected type %q", queue.ErrInvalidMessage, msg.Type)
	}
	var f Feedback
	if err := json.Unmarshal(msg.Payload, &f); err != nil {
		return fmt.Errorf("%w: %v", queue.ErrInvalidMessage, err)
	}
	if f.ID == "" {
		f.ID = msg.ID
	}

	priority := Classify(f.Rating, f.Message)
	if err := s.Repo.MarkTriaged(ctx, f.ID, priority, s.Now()); err != nil {
		return err
	}

	fields := map[string]any{
		"feedback_id": f.ID,
		"priority":    priority,
		"rating":      f.Rating,
		"page":        f.Page,
	}
	if msg.RequestID != "" {
		fields["request_id"] = msg.RequestID
	}
	if priority == PriorityHigh {
		fields["document_id"] = f.DocumentID
		telemetry.Warn("feedback.triaged", fields)
		return nil
	}
	telemetry.Info("feedback.triaged", fields)
	return nil
}
