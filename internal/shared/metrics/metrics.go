package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	documentsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_created_total",
		Help: "Total documents created, by kind",
	}, []string{"kind"})

	rendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "renders_total",
		Help: "Total template renders, by template id and result",
	}, []string{"template", "result"})

	renderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "render_duration_ms",
		Help:    "Template render duration in milliseconds",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"template"})

	permissionDeniedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "permission_denied_total",
		Help: "Total gated actions denied, by action",
	}, []string{"action"})

	autosaveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosave_total",
		Help: "Editor auto-save attempts, by result",
	}, []string{"result"})

	editorSessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "editor_sessions_active",
		Help: "Open editor sessions",
	})

	aiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_requests_total",
		Help: "AI generation requests, by kind and result",
	}, []string{"kind", "result"})

	queueMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "queue_messages_total",
		Help: "Queue messages consumed by the worker, by type and result",
	}, []string{"type", "result"})
)

func init() {
	registry.MustRegister(
		documentsCreatedTotal,
		rendersTotal,
		renderDuration,
		permissionDeniedTotal,
		autosaveTotal,
		editorSessionsActive,
		aiRequestsTotal,
		queueMessagesTotal,
		collectors.NewGoCollector(),
	)
}

// IncDocumentCreated counts a created resume or cover letter.
func IncDocumentCreated(kind string) {
	documentsCreatedTotal.WithLabelValues(kind).Inc()
}

// ObserveRender records one template render.
func ObserveRender(template string, ok bool, durationMs float64) {
	result := "ok"
	if !ok {
		result = "error"
	}
	if durationMs < 0 {
		durationMs = 0
	}
	rendersTotal.WithLabelValues(template, result).Inc()
	renderDuration.WithLabelValues(template).Observe(durationMs)
}

// IncPermissionDenied counts a denied gated action.
func IncPermissionDenied(action string) {
	permissionDeniedTotal.WithLabelValues(action).Inc()
}

// IncAutosave counts an auto-save attempt by result ("ok", "error", "discarded").
func IncAutosave(result string) {
	autosaveTotal.WithLabelValues(result).Inc()
}

// SessionOpened and SessionClosed track live editor sessions.
func SessionOpened() { editorSessionsActive.Inc() }

func SessionClosed() { editorSessionsActive.Dec() }

// IncAIRequest counts an AI generation call.
func IncAIRequest(kind, result string) {
	aiRequestsTotal.WithLabelValues(kind, result).Inc()
}

// IncQueueMessage counts a consumed queue message. An empty type is reported
// as "unknown".
func IncQueueMessage(msgType, result string) {
	if msgType == "" {
		msgType = "unknown"
	}
	queueMessagesTotal.WithLabelValues(msgType, result).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
