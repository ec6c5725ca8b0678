package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/ai"
	"resume-builder/internal/documents"
	"resume-builder/internal/editor"
	"resume-builder/internal/feedback"
	"resume-builder/internal/identity"
	"resume-builder/internal/photos"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/subscriptions"
	"resume-builder/internal/users"
	"resume-builder/resume/model"
)

const aiRateGroup = "AI"

// RouterDeps are the handlers mounted under /api/v1.
type RouterDeps struct {
	Config       config.Config
	Health       *health.Service
	Resumes      *documents.Handler[model.ResumeValues]
	CoverLetters *documents.Handler[model.CoverLetterValues]
	Templates    *documents.TemplatesHandler
	Editor       *editor.Handler
	AI           *ai.Handler
	Billing      *subscriptions.Handler
	Photos       *photos.Handler
	Feedback     *feedback.Handler
	Users        *users.Handler
	GoogleAuth   *identity.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})

	deps.GoogleAuth.RegisterRoutes(api)
	deps.Users.RegisterRoutes(api)
	deps.Billing.RegisterRoutes(api)
	deps.Resumes.RegisterRoutes(api)
	deps.CoverLetters.RegisterRoutes(api)
	deps.Templates.RegisterRoutes(api)
	deps.Editor.RegisterRoutes(api)
	deps.Photos.RegisterRoutes(api)
	deps.Photos.RegisterPublicRoutes(api)
	deps.Feedback.RegisterRoutes(api)

	aiGroup := api.Group("")
	aiGroup.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules:        aiRateRules(deps.Config),
		DefaultGroup: aiRateGroup,
	}))
	deps.AI.RegisterRoutes(aiGroup)

	if deps.Config.IsDevLike() {
		dev := api.Group("/dev")
		deps.Billing.RegisterDevRoutes(dev)
	}
	return r
}

func aiRateRules(cfg config.Config) map[string]middleware.RateLimitRule {
	if cfg.AIRatePerMinute <= 0 {
		return nil
	}
	burst := cfg.AIRateBurst
	if burst <= 0 {
		burst = 1
	}
	return map[string]middleware.RateLimitRule{
		aiRateGroup: {Rate: float64(cfg.AIRatePerMinute) / time.Minute.Seconds(), Burst: burst},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
