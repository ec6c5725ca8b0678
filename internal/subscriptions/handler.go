package subscriptions

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/permissions"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// DocumentCounter reports how many documents of each kind a user owns.
type DocumentCounter interface {
	Counts(ctx context.Context, ownerID string) (permissions.Counts, error)
}

// Handler exposes billing status endpoints.
type Handler struct {
	Resolver *Resolver
	Policy   permissions.Policy
	Docs     DocumentCounter
}

// NewHandler constructs a Handler.
func NewHandler(resolver *Resolver, policy permissions.Policy, docs DocumentCounter) *Handler {
	return &Handler{Resolver: resolver, Policy: policy, Docs: docs}
}

// RegisterRoutes attaches billing routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/billing/status", h.status)
}

// RegisterDevRoutes attaches dev-only routes that stand in for the billing webhook.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.PUT("/subscription", h.devUpsert)
}

func (h *Handler) status(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	level, err := h.Resolver.LevelForRequest(c)
	if err != nil {
		respondErr(c, err, "failed to resolve plan")
		return
	}
	counts, err := h.Docs.Counts(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, err, "failed to count documents")
		return
	}
	sub, err := h.Resolver.Repo.Get(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		respondErr(c, err, "failed to fetch subscription")
		return
	}

	body := gin.H{
		"level":       level,
		"permissions": h.Policy.Snapshot(level, counts),
	}
	if err == nil {
		body["subscription"] = gin.H{
			"currentPeriodEnd":   sub.StripeCurrentPeriodEnd,
			"cancelAtPeriodEnd":  sub.StripeCancelAtPeriodEnd,
			"proTrialEnd":        sub.ProTrialEnd,
			"enterpriseTrialEnd": sub.EnterpriseTrialEnd,
		}
	}
	respond.JSON(c, http.StatusOK, body)
}

type devSubscriptionRequest struct {
	Level     string `json:"level"`
	TrialDays int    `json:"trialDays"`
	Days      int    `json:"days"`
}

// devUpsert grants the caller a tier, either as a trial or as a paid period
// on the configured price id.
func (h *Handler) devUpsert(c *gin.Context) {
	var req devSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	level, ok := permissions.ParseLevel(req.Level)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown level", gin.H{"level": req.Level})
		return
	}

	now := h.Resolver.now().UTC()
	sub := UserSubscription{UserID: middleware.UserIDFromContext(c)}
	switch {
	case level == permissions.Free:
	case req.TrialDays > 0:
		end := now.AddDate(0, 0, req.TrialDays)
		if level == permissions.Pro {
			sub.ProTrialEnd = &end
		} else {
			sub.EnterpriseTrialEnd = &end
		}
	default:
		days := req.Days
		if days <= 0 {
			days = 30
		}
		end := now.AddDate(0, 0, days)
		sub.StripeCurrentPeriodEnd = &end
		sub.StripePriceID = h.Resolver.Prices.Pro
		if level == permissions.Enterprise {
			sub.StripePriceID = h.Resolver.Prices.Enterprise
		}
		if sub.StripePriceID == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "no price id configured for level", gin.H{"level": level})
			return
		}
	}

	saved, err := h.Resolver.Repo.Upsert(c.Request.Context(), sub)
	if err != nil {
		respondErr(c, err, "failed to save subscription")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"level":        Resolve(&saved, now, h.Resolver.Prices),
		"subscription": saved,
	})
}

func respondErr(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}
