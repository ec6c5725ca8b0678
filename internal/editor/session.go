package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"resume-builder/internal/documents"
	"resume-builder/internal/permissions"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/layout"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

var (
	ErrUnknownStep     = errors.New("unknown step")
	ErrInvalidPatch    = errors.New("patch must be a JSON object")
	ErrSessionClosed   = errors.New("session closed")
	ErrSessionNotFound = errors.New("session not found")
)

const saveTimeout = 10 * time.Second

// SaveState is the auto-save lifecycle of a session.
type SaveState string

const (
	SaveIdle    SaveState = "idle"
	SavePending SaveState = "pending"
	SaveSaving  SaveState = "saving"
	SaveSaved   SaveState = "saved"
	SaveFailed  SaveState = "error"
)

// SaveStatus is transient: a failure is reported here and retried on the
// next edit.
type SaveStatus struct {
	State   SaveState  `json:"state"`
	Error   string     `json:"error,omitempty"`
	SavedAt *time.Time `json:"savedAt,omitempty"`
}

// SaveFunc persists a snapshot of the document.
type SaveFunc[D any] func(ctx context.Context, doc D) error

// Options configures a Session.
type Options[D model.Values[D]] struct {
	AutoSaveDelay  time.Duration
	ResizeDebounce time.Duration
	Save           SaveFunc[D]
	Renderer       *render.Renderer[D]
}

// State is the client-facing view of a session.
type State struct {
	SessionID   string            `json:"sessionId"`
	DocumentID  string            `json:"documentId"`
	Kind        model.Kind        `json:"kind"`
	Steps       Steps             `json:"steps"`
	CurrentStep string            `json:"currentStep"`
	StepIndex   int               `json:"stepIndex"`
	Document    any               `json:"document"`
	Errors      model.FieldErrors `json:"errors,omitempty"`
	SaveStatus  SaveStatus        `json:"saveStatus"`
	Frame       layout.Frame      `json:"frame"`
}

// Session is one open editor: the in-progress document, the current step
// and its auto-save and viewport state. All methods are safe for
// concurrent use.
type Session[D model.Values[D]] struct {
	id         string
	ownerID    string
	documentID string
	steps      Steps
	opts       Options[D]
	viewport   *layout.Viewport

	// saveMu serializes saves so a slow older snapshot never lands after a
	// newer one.
	saveMu sync.Mutex

	mu         sync.Mutex
	current    int
	doc        D
	stepErrors map[string]model.FieldErrors
	version    uint64
	saved      uint64
	status     SaveStatus
	timer      *time.Timer
	gen        uint64
	closed     bool
	subs       map[int]func()
	nextSub    int
}

// NewSession opens a session on doc, starting at the first step.
func NewSession[D model.Values[D]](id, ownerID, documentID string, doc D, opts Options[D]) *Session[D] {
	return &Session[D]{
		id:         id,
		ownerID:    ownerID,
		documentID: documentID,
		steps:      StepsFor(doc.Kind()),
		opts:       opts,
		viewport:   layout.NewViewport(opts.ResizeDebounce),
		doc:        doc.Clone(),
		stepErrors: map[string]model.FieldErrors{},
		status:     SaveStatus{State: SaveIdle},
		subs:       map[int]func(){},
	}
}

func (s *Session[D]) ID() string         { return s.id }
func (s *Session[D]) OwnerID() string    { return s.ownerID }
func (s *Session[D]) DocumentID() string { return s.documentID }

func (s *Session[D]) Kind() model.Kind {
	var zero D
	return zero.Kind()
}

// Document returns a copy of the in-progress document.
func (s *Session[D]) Document() D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// CurrentStep returns the active step.
func (s *Session[D]) CurrentStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[s.current]
}

// SaveStatus returns the auto-save status.
func (s *Session[D]) SaveStatus() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// State snapshots the session for clients.
func (s *Session[D]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := s.steps[s.current]
	return State{
		SessionID:   s.id,
		DocumentID:  s.documentID,
		Kind:        s.Kind(),
		Steps:       s.steps,
		CurrentStep: step.Key,
		StepIndex:   s.current,
		Document:    s.doc.Clone(),
		Errors:      s.stepErrors[step.Key],
		SaveStatus:  s.status,
		Frame:       s.viewport.Current(),
	}
}

// Next advances one step. On the last step it does nothing.
func (s *Session[D]) Next() Step {
	return s.move(func(i int) int { return min(i+1, len(s.steps)-1) })
}

// Prev goes back one step. On the first step it does nothing.
func (s *Session[D]) Prev() Step {
	return s.move(func(i int) int { return max(i-1, 0) })
}

// JumpTo moves to key. An unknown key leaves the session unchanged.
func (s *Session[D]) JumpTo(key string) (Step, error) {
	i := s.steps.Index(key)
	if i < 0 {
		return s.CurrentStep(), fmt.Errorf("%w: %q", ErrUnknownStep, key)
	}
	return s.move(func(int) int { return i }), nil
}

func (s *Session[D]) move(to func(int) int) Step {
	s.mu.Lock()
	before := s.current
	s.current = to(s.current)
	step := s.steps[s.current]
	changed := before != s.current
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return step
}

// Update applies patch to the fields owned by stepKey. The patch is a JSON
// object whose keys must belong to the step. The merged document is
// validated for that step only; on failure the FieldErrors are returned and
// the document is left untouched. Styling changes also require level to
// allow customizations.
func (s *Session[D]) Update(stepKey string, patch json.RawMessage, level permissions.Level) error {
	i := s.steps.Index(stepKey)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownStep, stepKey)
	}
	step := s.steps[i]

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil || fields == nil {
		return ErrInvalidPatch
	}
	fe := model.FieldErrors{}
	for key := range fields {
		if !slices.Contains(step.Fields, key) {
			fe[key] = "is not part of the " + step.Key + " step"
		}
	}
	if len(fe) > 0 {
		return fe
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	next, err := merge(s.doc, fields)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	fe = next.Validate().Only(step.Fields)
	if step.Key == "template" && s.opts.Renderer != nil {
		if id := strings.TrimSpace(next.TemplateID()); id != "" && !s.opts.Renderer.Registry.Known(id) {
			if fe == nil {
				fe = model.FieldErrors{}
			}
			fe["selectedTemplate"] = "is not a known template"
		}
	}
	if pe := documents.CheckPhoto(s.ownerID, s.doc, next); len(pe) > 0 {
		if fe == nil {
			fe = model.FieldErrors{}
		}
		maps.Copy(fe, pe)
	}
	if len(fe) > 0 {
		s.stepErrors[step.Key] = fe
		s.mu.Unlock()
		s.notify()
		return fe
	}
	if err := documents.CheckCustomization(level, s.doc, next); err != nil {
		s.mu.Unlock()
		return err
	}

	s.doc = next
	s.version++
	delete(s.stepErrors, step.Key)
	s.status = SaveStatus{State: SavePending, SavedAt: s.status.SavedAt}
	s.scheduleLocked(s.opts.AutoSaveDelay)
	s.mu.Unlock()
	s.notify()
	return nil
}

// merge overlays fields on doc's JSON form and decodes into a fresh value so
// no slice or map is shared with doc.
func merge[D any](doc D, fields map[string]json.RawMessage) (D, error) {
	var zero D
	base, err := json.Marshal(doc)
	if err != nil {
		return zero, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return zero, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return zero, err
	}
	var next D
	if err := json.Unmarshal(raw, &next); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field := strings.SplitN(typeErr.Field, ".", 2)[0]
			return zero, model.FieldErrors{field: "has the wrong type"}
		}
		return zero, ErrInvalidPatch
	}
	return next, nil
}

func (s *Session[D]) scheduleLocked(delay time.Duration) {
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(delay, func() { s.autosave(gen) })
}

func (s *Session[D]) autosave(gen uint64) {
	s.mu.Lock()
	stale := s.closed || gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}
	_ = s.persist(context.Background())
}

// Flush saves unsaved edits now.
func (s *Session[D]) Flush(ctx context.Context) error {
	return s.persist(ctx)
}

func (s *Session[D]) persist(ctx context.Context) error {
	if s.opts.Save == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.version == s.saved {
		s.mu.Unlock()
		return nil
	}
	version, doc := s.version, s.doc.Clone()
	s.status = SaveStatus{State: SaveSaving, SavedAt: s.status.SavedAt}
	s.mu.Unlock()
	s.notify()

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	err := s.opts.Save(ctx, doc)
	cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		metrics.IncAutosave("discarded")
		return err
	}
	if err != nil {
		s.status = SaveStatus{State: SaveFailed, Error: "changes could not be saved", SavedAt: s.status.SavedAt}
		s.mu.Unlock()
		metrics.IncAutosave("error")
		telemetry.Warn("editor.autosave_failed", map[string]any{
			"session_id":  s.id,
			"document_id": s.documentID,
			"error":       err,
		})
		s.notify()
		return err
	}
	s.saved = version
	now := time.Now().UTC()
	if s.version > s.saved {
		s.status = SaveStatus{State: SavePending, SavedAt: &now}
	} else {
		s.status = SaveStatus{State: SaveSaved, SavedAt: &now}
	}
	s.mu.Unlock()
	metrics.IncAutosave("ok")
	s.notify()
	return nil
}

// Resize reports the preview container width.
func (s *Session[D]) Resize(width float64) {
	s.viewport.Observe(width)
}

// OnFrame subscribes to coalesced viewport changes.
func (s *Session[D]) OnFrame(fn func(layout.Frame)) func() {
	return s.viewport.Subscribe(fn)
}

// Preview renders the in-progress document at the current frame.
func (s *Session[D]) Preview(ctx context.Context, fragment bool) (string, error) {
	if s.opts.Renderer == nil {
		return "", errors.New("editor: no renderer configured")
	}
	html, _, err := s.opts.Renderer.RenderString(ctx, s.Document(), s.viewport.Current(), fragment)
	return html, err
}

// Subscribe registers fn to be called after any state change.
func (s *Session[D]) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session[D]) notify() {
	s.mu.Lock()
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Close stops auto-save and the viewport. Saves still in flight complete
// but their result is discarded.
func (s *Session[D]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.subs = map[int]func(){}
	s.mu.Unlock()
	s.viewport.Close()
}

// Closed reports whether Close has been called.
func (s *Session[D]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
