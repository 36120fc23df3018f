package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("username or email already registered")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooLong      = errors.New("password must be at most 72 bytes")
	ErrNotPremium           = errors.New("premium subscription required")
	ErrInvalidPlan          = errors.New("invalid subscription plan")
	ErrAlreadyPremium       = errors.New("user already has an active premium subscription")
	ErrNoActiveSubscription = errors.New("no active premium subscription")
	ErrSubscriptionInactive = errors.New("paypal subscription is not active")
	ErrSubscriptionMismatch = errors.New("paypal subscription belongs to another user")
	ErrUnknownSubscriber    = errors.New("cannot determine user for paypal subscription")
	ErrInvalidSignature     = errors.New("webhook signature verification failed")
	ErrInvalidEvent         = errors.New("malformed webhook event")
	ErrNoSnapshot           = errors.New("no synced snapchat data yet")
	ErrEmptyCohort          = errors.New("no other creators to compare against yet")
	ErrNotLinked            = errors.New("snapchat account not linked")
	ErrInvalidState         = errors.New("invalid or expired oauth state")
	ErrInvalidFormat        = errors.New("unsupported export format")
	ErrMissingTicketFields  = errors.New("subject and message are required")
)

// CooldownError is returned when a manual sync is requested too early.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("sync cooldown active, retry in %s", e.Remaining.Round(time.Second))
}
