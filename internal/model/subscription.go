package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Subscription statuses.
const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
	SubscriptionSuspended = "suspended"
)

// Subscription is the billing record behind a user's tier.
type Subscription struct {
	ID                   int64      `db:"id" json:"id"`
	UserID               int64      `db:"user_id" json:"userId"`
	PlanID               string     `db:"plan_id" json:"planId"`
	Status               string     `db:"status" json:"status"`
	PayPalSubscriptionID *string    `db:"paypal_subscription_id" json:"paypalSubscriptionId,omitempty"`
	PayPalPayerID        *string    `db:"paypal_payer_id" json:"paypalPayerId,omitempty"`
	RenewsAt             *time.Time `db:"renews_at" json:"renewsAt"`
	CancelledAt          *time.Time `db:"cancelled_at" json:"cancelledAt"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
}

// SubscriptionPlan is a purchasable plan.
type SubscriptionPlan struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Tier          string          `db:"tier" json:"tier"`
	BillingPeriod string          `db:"billing_period" json:"billingPeriod"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Currency      string          `db:"currency" json:"currency"`
	Features      pq.StringArray  `db:"features" json:"features"`
}

// Period returns the length of one billing cycle.
func (p *SubscriptionPlan) Period() time.Duration {
	switch p.BillingPeriod {
	case "monthly":
		return 31 * 24 * time.Hour
	case "yearly":
		return 366 * 24 * time.Hour
	}
	return 0
}
