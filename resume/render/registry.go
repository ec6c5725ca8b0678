package render

import (
	"fmt"
	"io"
	"strings"

	"resume-builder/resume/layout"
)

// Info describes a template for pickers and persistence.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Columns     int    `json:"columns"`
}

// Options carries per-render inputs that are not part of the document.
type Options struct {
	Frame    layout.Frame
	PhotoURL string
	// Fragment renders only the scaled frame, without the HTML document shell.
	Fragment bool
}

// Template lays out one document type. Implementations must not mutate doc.
type Template[D any] interface {
	Info() Info
	Render(w io.Writer, doc D, opts Options) error
}

// Registry maps stable template ids to templates. It is built once at
// startup and read-only afterwards.
type Registry[D any] struct {
	defaultID string
	order     []string
	byID      map[string]Template[D]
}

// NewRegistry registers templates in order. It panics on empty or duplicate
// ids and when defaultID is not among them.
func NewRegistry[D any](defaultID string, templates ...Template[D]) *Registry[D] {
	r := &Registry[D]{defaultID: defaultID, byID: make(map[string]Template[D], len(templates))}
	for _, t := range templates {
		id := t.Info().ID
		if strings.TrimSpace(id) == "" {
			panic("render: template registered without id")
		}
		if _, dup := r.byID[id]; dup {
			panic(fmt.Sprintf("render: duplicate template id %q", id))
		}
		r.byID[id] = t
		r.order = append(r.order, id)
	}
	if _, ok := r.byID[defaultID]; !ok {
		panic(fmt.Sprintf("render: default template %q is not registered", defaultID))
	}
	return r
}

// Lookup returns the template registered under id.
func (r *Registry[D]) Lookup(id string) (Template[D], bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Resolve returns the template for id, or the default when id is unknown.
func (r *Registry[D]) Resolve(id string) Template[D] {
	if t, ok := r.byID[strings.TrimSpace(id)]; ok {
		return t
	}
	return r.byID[r.defaultID]
}

// Known reports whether id is registered.
func (r *Registry[D]) Known(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry[D]) DefaultID() string { return r.defaultID }

// List returns template infos in registration order.
func (r *Registry[D]) List() []Info {
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Info())
	}
	return out
}
