package model

import "time"

// Subscription tiers stored on users.subscription.
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// User represents an account holder.
type User struct {
	ID                    int64      `db:"id" json:"id"`
	Username              string     `db:"username" json:"username"`
	Email                 string     `db:"email" json:"email"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	Subscription          string     `db:"subscription" json:"subscription"`
	SubscriptionExpiresAt *time.Time `db:"subscription_expires_at" json:"subscriptionExpiresAt"`
	CreatedAt             time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsPremium reports whether the user currently holds premium access.
// A premium tier with a lapsed expiry no longer counts.
func (u *User) IsPremium(now time.Time) bool {
	if u == nil || u.Subscription != TierPremium {
		return false
	}
	return u.SubscriptionExpiresAt == nil || u.SubscriptionExpiresAt.After(now)
}
