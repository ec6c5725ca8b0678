package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/ai"
	"resume-builder/internal/documents"
	"resume-builder/internal/editor"
	"resume-builder/internal/feedback"
	"resume-builder/internal/identity"
	"resume-builder/internal/llm"
	"resume-builder/internal/llm/openai"
	"resume-builder/internal/permissions"
	"resume-builder/internal/photos"
	"resume-builder/internal/queue"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/subscriptions"
	"resume-builder/internal/users"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

// App holds shared dependencies and the router built from them.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Store        object.ObjectStore
	Queue        queue.Client
	LLM          llm.Client
	Policy       permissions.Policy
	Sessions     *editor.Registry
	Resolver     *subscriptions.Resolver
	Resumes      *documents.Service[model.ResumeValues]
	CoverLetters *documents.Service[model.CoverLetterValues]
	Photos       *photos.Service
	Feedback     *feedback.Service
}

type repos struct {
	documents     documents.Repo
	subscriptions subscriptions.Repo
	users         users.Repo
	feedback      feedback.Repo
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	policy, err := permissions.LoadPolicy(cfg.PlanPolicyFile)
	if err != nil {
		return nil, fmt.Errorf("plan policy: %w", err)
	}
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}
	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Queue:    queueClient,
		LLM:      llmClient,
		Policy:   policy,
		Sessions: editor.NewRegistry(cfg.SessionIdleTTL),
	}
	app.Router = app.routes(buildRepos(sqlDB))
	return app, nil
}

// Close tears down open editor sessions, flushing their edits, then closes
// the database.
func (a *App) Close() error {
	a.Sessions.Close()
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func (a *App) routes(r repos) *gin.Engine {
	cfg := a.Config
	a.Photos = photos.NewService(a.Store, cfg.PhotoBaseURL)

	resumeRenderer := render.NewRenderer(render.Resumes(), a.Photos)
	coverRenderer := render.NewRenderer(render.CoverLetters(), a.Photos)

	resumeStore := documents.NewStore[model.ResumeValues](r.documents)
	coverStore := documents.NewStore[model.CoverLetterValues](r.documents)
	a.Resumes = documents.NewService(resumeStore, a.Policy)
	a.CoverLetters = documents.NewService(coverStore, a.Policy)

	a.Resolver = subscriptions.NewResolver(r.subscriptions, subscriptions.PriceIDs{
		Pro:        cfg.ProPriceID,
		Enterprise: cfg.EnterprisePriceID,
	})
	userSvc := users.NewService(r.users)
	a.Feedback = feedback.NewService(r.feedback, a.Queue)

	return server.NewRouter(server.RouterDeps{
		Config:       cfg,
		Health:       health.NewService(pinger(a.DB), a.Sessions.Len),
		Resumes:      documents.NewHandler("/resumes", a.Resumes, a.Resolver, resumeRenderer),
		CoverLetters: documents.NewHandler("/cover-letters", a.CoverLetters, a.Resolver, coverRenderer),
		Templates:    &documents.TemplatesHandler{Resumes: resumeRenderer.Registry, CoverLetters: coverRenderer.Registry},
		Editor: &editor.Handler{
			Sessions:       a.Sessions,
			Resumes:        resumeStore,
			CoverLetters:   coverStore,
			ResumeRenderer: resumeRenderer,
			CoverRenderer:  coverRenderer,
			Plans:          a.Resolver,
			AutoSaveDelay:  cfg.AutoSaveDelay,
			ResizeDebounce: cfg.ResizeDebounce,
			AllowedOrigins: cfg.CORSAllowOrigin,
		},
		AI: &ai.Handler{
			Svc:          ai.NewService(a.LLM),
			Policy:       a.Policy,
			Plans:        a.Resolver,
			Sessions:     a.Sessions,
			Resumes:      a.Resumes,
			CoverLetters: a.CoverLetters,
		},
		Billing:  subscriptions.NewHandler(a.Resolver, a.Policy, documents.Counter{Repo: r.documents}),
		Photos:   photos.NewHandler(a.Photos),
		Feedback: feedback.NewHandler(a.Feedback),
		Users:    users.NewHandler(userSvc),
		GoogleAuth: identity.NewGoogleService(identity.GoogleConfig{
			ClientID:      cfg.GoogleClientID,
			ClientSecret:  cfg.GoogleClientSecret,
			RedirectURL:   cfg.GoogleRedirectURL,
			UIRedirectURL: cfg.UIRedirectURL,
		}, userSvc),
	})
}

func buildRepos(sqlDB *sql.DB) repos {
	if sqlDB != nil {
		return repos{
			documents:     documents.NewPGRepo(sqlDB),
			subscriptions: subscriptions.NewPGRepo(sqlDB),
			users:         users.NewPGRepo(sqlDB),
			feedback:      feedback.NewPGRepo(sqlDB),
		}
	}
	return repos{
		documents:     documents.NewMemoryRepo(),
		subscriptions: subscriptions.NewMemoryRepo(),
		users:         users.NewMemoryRepo(),
		feedback:      feedback.NewMemoryRepo(),
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, db.ErrNoDatabaseURL
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.FeedbackQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.FeedbackQueueURL)
}

// buildLLM returns the placeholder client when no key is configured so the
// AI routes answer 502 instead of the service failing to start.
func buildLLM(cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider != "openai" || strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		telemetry.Info("bootstrap.llm_disabled", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}, nil
	}
	return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
}

func pinger(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}
