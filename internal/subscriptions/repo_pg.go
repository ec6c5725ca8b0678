package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo stores subscriptions in the user_subscriptions table.
type PGRepo struct {
	DB *sql.DB
}

// NewPGRepo constructs a Postgres-backed repository.
func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

const subscriptionColumns = `user_id, stripe_customer_id, stripe_subscription_id, stripe_price_id,
stripe_current_period_end, stripe_cancel_at_period_end, pro_trial_end, pro_trial_expired,
enterprise_trial_end, enterprise_trial_expired, created_at, updated_at`

func (r *PGRepo) Get(ctx context.Context, userID string) (UserSubscription, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+subscriptionColumns+`
FROM user_subscriptions WHERE user_id = $1`, userID)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return UserSubscription{}, ErrNotFound
	}
	return sub, err
}

func (r *PGRepo) Upsert(ctx context.Context, sub UserSubscription) (UserSubscription, error) {
	now := time.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
INSERT INTO user_subscriptions (`+subscriptionColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
ON CONFLICT (user_id) DO UPDATE SET
  stripe_customer_id = EXCLUDED.stripe_customer_id,
  stripe_subscription_id = EXCLUDED.stripe_subscription_id,
  stripe_price_id = EXCLUDED.stripe_price_id,
  stripe_current_period_end = EXCLUDED.stripe_current_period_end,
  stripe_cancel_at_period_end = EXCLUDED.stripe_cancel_at_period_end,
  pro_trial_end = EXCLUDED.pro_trial_end,
  pro_trial_expired = EXCLUDED.pro_trial_expired,
  enterprise_trial_end = EXCLUDED.enterprise_trial_end,
  enterprise_trial_expired = EXCLUDED.enterprise_trial_expired,
  updated_at = EXCLUDED.updated_at
RETURNING `+subscriptionColumns,
		sub.UserID,
		nullString(sub.StripeCustomerID),
		nullString(sub.StripeSubscriptionID),
		nullString(sub.StripePriceID),
		sub.StripeCurrentPeriodEnd,
		sub.StripeCancelAtPeriodEnd,
		sub.ProTrialEnd,
		sub.ProTrialExpired,
		sub.EnterpriseTrialEnd,
		sub.EnterpriseTrialExpired,
		now,
	)
	return scanSubscription(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (UserSubscription, error) {
	var (
		sub                              UserSubscription
		customer, subscription, price    sql.NullString
		periodEnd, proEnd, enterpriseEnd sql.NullTime
	)
	if err := row.Scan(
		&sub.UserID,
		&customer,
		&subscription,
		&price,
		&periodEnd,
		&sub.StripeCancelAtPeriodEnd,
		&proEnd,
		&sub.ProTrialExpired,
		&enterpriseEnd,
		&sub.EnterpriseTrialExpired,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return UserSubscription{}, err
	}
	sub.StripeCustomerID = customer.String
	sub.StripeSubscriptionID = subscription.String
	sub.StripePriceID = price.String
	sub.StripeCurrentPeriodEnd = timePtr(periodEnd)
	sub.ProTrialEnd = timePtr(proEnd)
	sub.EnterpriseTrialEnd = timePtr(enterpriseEnd)
	return sub, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
