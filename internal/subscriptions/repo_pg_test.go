package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var subscriptionColumnNames = []string{
	"user_id", "stripe_customer_id", "stripe_subscription_id", "stripe_price_id",
	"stripe_current_period_end", "stripe_cancel_at_period_end", "pro_trial_end", "pro_trial_expired",
	"enterprise_trial_end", "enterprise_trial_expired", "created_at", "updated_at",
}

func TestPGRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewPGRepo(db)
	periodEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM user_subscriptions WHERE user_id = \\$1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(subscriptionColumnNames).AddRow(
			"user-1", "cus_1", "sub_1", "price_pro",
			periodEnd, false, nil, false,
			nil, true, created, created,
		))

	sub, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sub.StripePriceID != "price_pro" || sub.StripeCurrentPeriodEnd == nil || !sub.StripeCurrentPeriodEnd.Equal(periodEnd) {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if sub.ProTrialEnd != nil || !sub.EnterpriseTrialExpired {
		t.Fatalf("unexpected trial fields %+v", sub)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT .* FROM user_subscriptions").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(subscriptionColumnNames))

	if _, err := NewPGRepo(db).Get(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	trialEnd := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO user_subscriptions").
		WithArgs(
			"user-1",
			nil, // customer
			nil, // subscription
			nil, // price
			nil, // period end
			false,
			sqlmock.AnyArg(), // pro trial end
			false,
			nil,
			false,
			sqlmock.AnyArg(), // updated_at
		).
		WillReturnRows(sqlmock.NewRows(subscriptionColumnNames).AddRow(
			"user-1", nil, nil, nil,
			nil, false, trialEnd, false,
			nil, false, now, now,
		))

	saved, err := NewPGRepo(db).Upsert(context.Background(), UserSubscription{UserID: "user-1", ProTrialEnd: &trialEnd})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if saved.ProTrialEnd == nil || !saved.ProTrialEnd.Equal(trialEnd) {
		t.Fatalf("unexpected saved record %+v", saved)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
