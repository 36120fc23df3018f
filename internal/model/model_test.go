package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserIsPremium(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.False(t, (*User)(nil).IsPremium(now))
	assert.False(t, (&User{Subscription: TierFree}).IsPremium(now))
	assert.True(t, (&User{Subscription: TierPremium}).IsPremium(now))
	assert.True(t, (&User{Subscription: TierPremium, SubscriptionExpiresAt: &future}).IsPremium(now))
	assert.False(t, (&User{Subscription: TierPremium, SubscriptionExpiresAt: &past}).IsPremium(now))
}

func TestPlanPeriod(t *testing.T) {
	assert.Equal(t, 31*24*time.Hour, (&SubscriptionPlan{BillingPeriod: "monthly"}).Period())
	assert.Equal(t, 366*24*time.Hour, (&SubscriptionPlan{BillingPeriod: "yearly"}).Period())
	assert.Zero(t, (&SubscriptionPlan{BillingPeriod: "none"}).Period())
}
