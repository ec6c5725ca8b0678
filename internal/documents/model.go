package documents

import (
	"encoding/json"
	"errors"
	"time"

	"resume-builder/resume/model"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Record is the persisted, kind-agnostic form of a document.
type Record struct {
	ID          string
	OwnerID     string
	Kind        model.Kind
	Title       string
	TemplateKey string
	Content     json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Document is a decoded record.
type Document[D model.Values[D]] struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Values    D         `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
