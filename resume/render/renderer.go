package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/layout"
	"resume-builder/resume/model"
)

var tracer = otel.Tracer("render")

// PhotoResolver turns a stored photo key into a displayable URL. ok is false
// when the key no longer points at a stored image.
type PhotoResolver interface {
	ResolvePhoto(ctx context.Context, key string) (url string, ok bool)
}

// Renderer normalizes a document, resolves its template and photo, and
// writes the HTML.
type Renderer[D model.Values[D]] struct {
	Registry *Registry[D]
	Photos   PhotoResolver
}

// NewRenderer builds a renderer over registry. photos may be nil.
func NewRenderer[D model.Values[D]](registry *Registry[D], photos PhotoResolver) *Renderer[D] {
	return &Renderer[D]{Registry: registry, Photos: photos}
}

// Render writes doc to w. Nothing is written when rendering fails.
func (r *Renderer[D]) Render(ctx context.Context, w io.Writer, doc D, frame layout.Frame, fragment bool) (Info, error) {
	ctx, span := tracer.Start(ctx, "Render.Renderer.Render")
	defer span.End()

	normalized := doc.Normalize()
	tmpl := r.Registry.Resolve(normalized.TemplateID())
	info := tmpl.Info()
	span.SetAttributes(
		attribute.String("template", info.ID),
		attribute.String("kind", string(normalized.Kind())),
		attribute.Bool("ready", frame.Ready),
	)
	if requested := strings.TrimSpace(doc.TemplateID()); requested != "" && requested != info.ID {
		telemetry.Warn("render.template_fallback", map[string]any{"requested": requested, "used": info.ID})
	}

	opts := Options{Frame: frame, Fragment: fragment}
	if key := strings.TrimSpace(normalized.PhotoHandle()); key != "" && r.Photos != nil {
		if url, ok := r.Photos.ResolvePhoto(ctx, key); ok {
			opts.PhotoURL = url
		}
	}

	start := time.Now()
	var buf bytes.Buffer
	err := tmpl.Render(&buf, normalized, opts)
	metrics.ObserveRender(info.ID, err == nil, float64(time.Since(start).Microseconds())/1000.0)
	if err != nil {
		span.RecordError(err)
		return info, fmt.Errorf("render %s %s: %w", normalized.Kind(), info.ID, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return info, err
	}
	return info, nil
}

// RenderString is Render into a string.
func (r *Renderer[D]) RenderString(ctx context.Context, doc D, frame layout.Frame, fragment bool) (string, Info, error) {
	var sb strings.Builder
	info, err := r.Render(ctx, &sb, doc, frame, fragment)
	if err != nil {
		return "", info, err
	}
	return sb.String(), info, nil
}
