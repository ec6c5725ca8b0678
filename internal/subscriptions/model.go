package subscriptions

import "time"

// UserSubscription is the billing record maintained by the payment
// collaborator. Absence of a record means FREE.
type UserSubscription struct {
	UserID                  string     `json:"userId"`
	StripeCustomerID        string     `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID    string     `json:"stripeSubscriptionId,omitempty"`
	StripePriceID           string     `json:"stripePriceId,omitempty"`
	StripeCurrentPeriodEnd  *time.Time `json:"stripeCurrentPeriodEnd,omitempty"`
	StripeCancelAtPeriodEnd bool       `json:"stripeCancelAtPeriodEnd"`
	ProTrialEnd             *time.Time `json:"proTrialEnd,omitempty"`
	ProTrialExpired         bool       `json:"proTrialExpired"`
	EnterpriseTrialEnd      *time.Time `json:"enterpriseTrialEnd,omitempty"`
	EnterpriseTrialExpired  bool       `json:"enterpriseTrialExpired"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

// PriceIDs maps configured billing price ids to tiers.
type PriceIDs struct {
	Pro        string
	Enterprise string
}
