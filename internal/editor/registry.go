package editor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/patrickmn/go-cache"

	"resume-builder/internal/permissions"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/layout"
	"resume-builder/resume/model"
)

// Handle is the kind-independent surface of a Session.
type Handle interface {
	ID() string
	OwnerID() string
	DocumentID() string
	Kind() model.Kind
	State() State
	CurrentStep() Step
	Next() Step
	Prev() Step
	JumpTo(key string) (Step, error)
	Update(stepKey string, patch json.RawMessage, level permissions.Level) error
	Resize(width float64)
	OnFrame(fn func(layout.Frame)) func()
	Preview(ctx context.Context, fragment bool) (string, error)
	Subscribe(fn func()) func()
	Flush(ctx context.Context) error
	Close()
}

var (
	_ Handle = (*Session[model.ResumeValues])(nil)
	_ Handle = (*Session[model.CoverLetterValues])(nil)
)

const teardownTimeout = 10 * time.Second

// Registry holds open sessions. A session idle longer than the TTL is
// evicted; eviction and explicit removal both flush unsaved edits and
// close the session.
type Registry struct {
	cache *cache.Cache
}

// NewRegistry constructs a Registry with the given idle TTL.
func NewRegistry(idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return newRegistry(idleTTL, idleTTL/2)
}

func newRegistry(idleTTL, sweep time.Duration) *Registry {
	c := cache.New(idleTTL, sweep)
	c.OnEvicted(func(_ string, v any) {
		h, ok := v.(Handle)
		if !ok {
			return
		}
		teardown(h)
	})
	return &Registry{cache: c}
}

func teardown(h Handle) {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()
	if err := h.Flush(ctx); err != nil {
		telemetry.Warn("editor.session_flush_failed", map[string]any{
			"session_id":  h.ID(),
			"document_id": h.DocumentID(),
			"error":       err,
		})
	}
	h.Close()
	metrics.SessionClosed()
	telemetry.Info("editor.session_closed", map[string]any{
		"session_id":  h.ID(),
		"document_id": h.DocumentID(),
	})
}

// Add registers h.
func (r *Registry) Add(h Handle) {
	r.cache.SetDefault(h.ID(), h)
	metrics.SessionOpened()
	telemetry.Info("editor.session_opened", map[string]any{
		"session_id":  h.ID(),
		"document_id": h.DocumentID(),
		"kind":        h.Kind(),
		"user_id":     h.OwnerID(),
	})
}

// Get returns the session id owned by ownerID and refreshes its idle TTL.
func (r *Registry) Get(ownerID, id string) (Handle, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	h := v.(Handle)
	if h.OwnerID() != ownerID {
		return nil, ErrSessionNotFound
	}
	r.cache.SetDefault(id, h)
	return h, nil
}

// Remove flushes and closes the session.
func (r *Registry) Remove(ownerID, id string) error {
	if _, err := r.Get(ownerID, id); err != nil {
		return err
	}
	r.cache.Delete(id)
	return nil
}

// Len is the number of open sessions.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// Close tears down every open session, including expired ones the janitor
// has not swept yet.
func (r *Registry) Close() {
	r.cache.DeleteExpired()
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
