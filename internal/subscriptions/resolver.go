package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-builder/internal/permissions"
	"resume-builder/internal/shared/server/middleware"
)

var tracer = otel.Tracer("subscriptions")

// Resolver derives a user's plan tier from their subscription record.
type Resolver struct {
	Repo   Repo
	Prices PriceIDs
	Now    func() time.Time
}

// NewResolver constructs a Resolver using wall-clock time.
func NewResolver(repo Repo, prices PriceIDs) *Resolver {
	return &Resolver{Repo: repo, Prices: prices, Now: time.Now}
}

// Level resolves the tier for userID. A missing record is FREE; any other
// storage failure is returned so callers never guess a tier.
func (r *Resolver) Level(ctx context.Context, userID string) (permissions.Level, error) {
	ctx, span := tracer.Start(ctx, "Subscriptions.Resolver.Level")
	defer span.End()

	sub, err := r.Repo.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		span.SetAttributes(attribute.String("plan.level", string(permissions.Free)))
		return permissions.Free, nil
	case err != nil:
		span.RecordError(err)
		return "", fmt.Errorf("load subscription: %w", err)
	}
	level := Resolve(&sub, r.now(), r.Prices)
	span.SetAttributes(attribute.String("plan.level", string(level)))
	return level, nil
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Resolve applies the tier precedence to a record:
// active PRO trial, active ENTERPRISE trial, then a paid period whose price
// matches a configured tier. Anything else is FREE.
func Resolve(sub *UserSubscription, now time.Time, prices PriceIDs) permissions.Level {
	if sub == nil {
		return permissions.Free
	}
	if trialActive(sub.ProTrialEnd, sub.ProTrialExpired, now) {
		return permissions.Pro
	}
	if trialActive(sub.EnterpriseTrialEnd, sub.EnterpriseTrialExpired, now) {
		return permissions.Enterprise
	}
	if sub.StripePriceID == "" || sub.StripeCurrentPeriodEnd == nil || !sub.StripeCurrentPeriodEnd.After(now) {
		return permissions.Free
	}
	switch sub.StripePriceID {
	case prices.Pro:
		return permissions.Pro
	case prices.Enterprise:
		return permissions.Enterprise
	default:
		return permissions.Free
	}
}

func trialActive(end *time.Time, expired bool, now time.Time) bool {
	return end != nil && !expired && end.After(now)
}

const levelContextKey = "planLevel"

// LevelForRequest resolves the caller's tier once per request and caches it
// on the gin context.
func (r *Resolver) LevelForRequest(c *gin.Context) (permissions.Level, error) {
	if cached := c.GetString(levelContextKey); cached != "" {
		return permissions.Level(cached), nil
	}
	level, err := r.Level(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		return "", err
	}
	c.Set(levelContextKey, string(level))
	return level, nil
}
