package feedback

import "time"

// Priority is the triage bucket assigned by the worker.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Feedback is one rating left by a user.
type Feedback struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Rating     int       `json:"rating"`
	Message    string    `json:"message"`
	Page       string    `json:"page"`
	DocumentID string    `json:"documentId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	// Priority is empty and TriagedAt nil until the worker has seen it.
	Priority  Priority   `json:"priority,omitempty"`
	TriagedAt *time.Time `json:"triagedAt,omitempty"`
}

// Input is the submitted form. Validation runs through gin binding tags.
type Input struct {
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Message    string `json:"message" binding:"max=2000"`
	Page       string `json:"page" binding:"max=200"`
	DocumentID string `json:"documentId" binding:"omitempty,max=64"`
}
