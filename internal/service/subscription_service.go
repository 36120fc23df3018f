package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ducksnap/internal/model"
	"ducksnap/internal/paypal"
	"ducksnap/internal/repository"

	"github.com/rs/zerolog"
)

// SubscriptionStatus is the subscription summary shown to the client.
type SubscriptionStatus struct {
	Plan              string     `json:"plan"`
	PlanID            string     `json:"planId"`
	Status            string     `json:"status"`
	ExpiresAt         *time.Time `json:"expiresAt"`
	IsPremium         bool       `json:"isPremium"`
	CancelAtPeriodEnd bool       `json:"cancelAtPeriodEnd"`
}

// UpgradeResult is either an activated subscription or a pending PayPal
// checkout the user still has to approve.
type UpgradeResult struct {
	Subscription   *SubscriptionStatus
	ApprovalURL    string
	SubscriptionID string
}

// BillingConfig carries PayPal plan mapping and return URLs.
type BillingConfig struct {
	PublicBaseURL string
	// PayPalPlans maps local plan ids to PayPal billing plan ids.
	PayPalPlans map[string]string
}

// SubscriptionService defines business logic methods for subscriptions.
type SubscriptionService interface {
	GetStatus(ctx context.Context, userID int64) (*SubscriptionStatus, error)
	Upgrade(ctx context.Context, userID int64, plan, paypalSubscriptionID string) (*UpgradeResult, error)
	Cancel(ctx context.Context, userID int64) (*SubscriptionStatus, error)
	ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error)
	// ActivatePayPalSubscription verifies an approved PayPal subscription and grants premium.
	ActivatePayPalSubscription(ctx context.Context, paypalSubscriptionID, payerID string) (int64, error)
	// ApplyEvent applies a PayPal webhook event to local state.
	ApplyEvent(ctx context.Context, ev *paypal.Event) error
	// ExpireLapsed downgrades premium users whose expiry has passed.
	ExpireLapsed(ctx context.Context) (int, error)
}

type subscriptionService struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
	paypal   PayPalClient
	cfg      BillingConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService with a scoped logger.
func NewSubscriptionService(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository, pp PayPalClient, cfg BillingConfig, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		userRepo: userRepo,
		subRepo:  subRepo,
		paypal:   pp,
		cfg:      cfg,
		logger:   logger.With().Str("service", "SubscriptionService").Logger(),
		now:      time.Now,
	}
}

// NormalizePlanID maps the bare premium tier to the monthly plan.
func NormalizePlanID(plan string) string {
	plan = strings.ToLower(strings.TrimSpace(plan))
	if plan == model.TierPremium {
		return "premium_monthly"
	}
	return plan
}

func (s *subscriptionService) GetStatus(ctx context.Context, userID int64) (*SubscriptionStatus, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to fetch subscription")
		return nil, err
	}
	return s.status(u, sub), nil
}

func (s *subscriptionService) status(u *model.User, sub *model.Subscription) *SubscriptionStatus {
	st := &SubscriptionStatus{
		Plan:      u.Subscription,
		PlanID:    model.TierFree,
		Status:    "none",
		IsPremium: u.IsPremium(s.now()),
	}
	if u.Subscription == model.TierPremium {
		st.ExpiresAt = u.SubscriptionExpiresAt
	}
	if sub != nil {
		st.PlanID = sub.PlanID
		st.Status = sub.Status
		st.CancelAtPeriodEnd = sub.Status == model.SubscriptionCancelled && st.IsPremium
	}
	return st
}

func (s *subscriptionService) Upgrade(ctx context.Context, userID int64, planID, paypalSubscriptionID string) (*UpgradeResult, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	planID = NormalizePlanID(planID)
	plan, err := s.subRepo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.Tier != model.TierPremium {
		return nil, ErrInvalidPlan
	}

	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsPremium(s.now()) && sub != nil && sub.Status == model.SubscriptionActive {
		return nil, ErrAlreadyPremium
	}

	if paypalSubscriptionID != "" {
		ppSub, err := s.paypal.GetSubscription(ctx, paypalSubscriptionID)
		if err != nil {
			s.logger.Error().Err(err).Str("paypal_subscription_id", paypalSubscriptionID).Msg("Failed to verify PayPal subscription")
			return nil, err
		}
		if ppSub.Status != paypal.StatusActive {
			return nil, ErrSubscriptionInactive
		}
		if ppSub.CustomID != "" && ppSub.CustomID != strconv.FormatInt(userID, 10) {
			return nil, ErrSubscriptionMismatch
		}
		if err := s.activate(ctx, userID, plan, ppSub, ppSub.Subscriber.PayerID); err != nil {
			return nil, err
		}
		st, err := s.GetStatus(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &UpgradeResult{Subscription: st, SubscriptionID: ppSub.ID}, nil
	}

	paypalPlanID := s.cfg.PayPalPlans[plan.ID]
	if paypalPlanID == "" {
		return nil, fmt.Errorf("no paypal plan configured for %s", plan.ID)
	}
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	ppSub, err := s.paypal.CreateSubscription(ctx, paypal.CreateSubscriptionRequest{
		PlanID:    paypalPlanID,
		CustomID:  strconv.FormatInt(userID, 10),
		ReturnURL: base + "/settings?subscription=success",
		CancelURL: base + "/pricing?subscription=cancelled",
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Str("plan_id", plan.ID).Msg("Failed to create PayPal subscription")
		return nil, err
	}
	if err := s.subRepo.UpsertPending(ctx, userID, plan.ID, ppSub.ID); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Str("paypal_subscription_id", ppSub.ID).Msg("PayPal checkout created")
	return &UpgradeResult{ApprovalURL: ppSub.ApprovalURL(), SubscriptionID: ppSub.ID}, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID int64) (*SubscriptionStatus, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.Status != model.SubscriptionActive {
		return nil, ErrNoActiveSubscription
	}
	if sub.PayPalSubscriptionID != nil && *sub.PayPalSubscriptionID != "" {
		if err := s.paypal.CancelSubscription(ctx, *sub.PayPalSubscriptionID, "Cancelled by user"); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to cancel PayPal subscription")
			return nil, err
		}
	}
	if err := s.subRepo.Cancel(ctx, userID, s.now()); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Msg("Subscription cancelled at period end")
	return s.GetStatus(ctx, userID)
}

func (s *subscriptionService) ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error) {
	return s.subRepo.ListPlans(ctx)
}

func (s *subscriptionService) ActivatePayPalSubscription(ctx context.Context, paypalSubscriptionID, payerID string) (int64, error) {
	ppSub, err := s.paypal.GetSubscription(ctx, paypalSubscriptionID)
	if err != nil {
		return 0, err
	}
	if ppSub.Status != paypal.StatusActive {
		return 0, ErrSubscriptionInactive
	}

	userID, planID, err := s.resolveSubscriber(ctx, ppSub)
	if err != nil {
		return 0, err
	}
	plan, err := s.subRepo.GetPlan(ctx, planID)
	if err != nil {
		return 0, err
	}
	if plan == nil {
		return 0, ErrInvalidPlan
	}
	if payerID == "" {
		payerID = ppSub.Subscriber.PayerID
	}
	if err := s.activate(ctx, userID, plan, ppSub, payerID); err != nil {
		return 0, err
	}
	return userID, nil
}

// resolveSubscriber finds the local user and plan for a PayPal subscription,
// preferring the pending row written at checkout over custom_id.
func (s *subscriptionService) resolveSubscriber(ctx context.Context, ppSub *paypal.Subscription) (int64, string, error) {
	local, err := s.subRepo.GetByPayPalID(ctx, ppSub.ID)
	if err != nil {
		return 0, "", err
	}
	if local != nil {
		return local.UserID, local.PlanID, nil
	}

	userID, err := strconv.ParseInt(ppSub.CustomID, 10, 64)
	if err != nil || userID <= 0 {
		return 0, "", ErrUnknownSubscriber
	}
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return 0, "", err
	}
	if u == nil {
		return 0, "", ErrUnknownSubscriber
	}
	planID := "premium_monthly"
	for local, remote := range s.cfg.PayPalPlans {
		if remote != "" && remote == ppSub.PlanID {
			planID = local
		}
	}
	return userID, planID, nil
}

func (s *subscriptionService) activate(ctx context.Context, userID int64, plan *model.SubscriptionPlan, ppSub *paypal.Subscription, payerID string) error {
	renewsAt := s.now().Add(plan.Period())
	if next := ppSub.BillingInfo.NextBillingTime; next != nil && !next.IsZero() {
		renewsAt = *next
	}
	if err := s.subRepo.Activate(ctx, userID, plan.ID, ppSub.ID, payerID, renewsAt); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Str("paypal_subscription_id", ppSub.ID).Msg("Failed to activate subscription")
		return err
	}
	s.logger.Info().Int64("user_id", userID).Str("plan_id", plan.ID).Time("renews_at", renewsAt).Msg("Subscription activated")
	return nil
}

func (s *subscriptionService) ApplyEvent(ctx context.Context, ev *paypal.Event) error {
	switch ev.Type {
	case paypal.EventSubscriptionActivated, paypal.EventSubscriptionReactivated:
		_, err := s.ActivatePayPalSubscription(ctx, ev.SubscriptionID, ev.PayerID)
		return err

	case paypal.EventSubscriptionCancelled, paypal.EventSubscriptionSuspended, paypal.EventSubscriptionExpired:
		local, err := s.subRepo.GetByPayPalID(ctx, ev.SubscriptionID)
		if err != nil {
			return err
		}
		if local == nil {
			s.logger.Warn().Str("paypal_subscription_id", ev.SubscriptionID).Str("event_type", ev.Type).Msg("Event for unknown subscription; ignoring")
			return nil
		}
		switch ev.Type {
		case paypal.EventSubscriptionCancelled:
			return s.subRepo.Cancel(ctx, local.UserID, s.now())
		case paypal.EventSubscriptionSuspended:
			return s.subRepo.Expire(ctx, local.UserID, model.SubscriptionSuspended)
		default:
			return s.subRepo.Expire(ctx, local.UserID, model.SubscriptionExpired)
		}

	case paypal.EventPaymentSaleCompleted:
		return s.extendRenewal(ctx, ev)

	default:
		s.logger.Debug().Str("event_type", ev.Type).Msg("Unhandled PayPal event type")
		return nil
	}
}

func (s *subscriptionService) extendRenewal(ctx context.Context, ev *paypal.Event) error {
	if ev.SubscriptionID == "" {
		return nil
	}
	renewsAt := ev.NextBillingTime
	if renewsAt.IsZero() {
		ppSub, err := s.paypal.GetSubscription(ctx, ev.SubscriptionID)
		if err != nil {
			return err
		}
		if next := ppSub.BillingInfo.NextBillingTime; next != nil {
			renewsAt = *next
		}
	}
	if renewsAt.IsZero() {
		local, err := s.subRepo.GetByPayPalID(ctx, ev.SubscriptionID)
		if err != nil {
			return err
		}
		if local == nil {
			return nil
		}
		plan, err := s.subRepo.GetPlan(ctx, local.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return ErrInvalidPlan
		}
		renewsAt = s.now().Add(plan.Period())
	}

	err := s.subRepo.ExtendRenewal(ctx, ev.SubscriptionID, renewsAt)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn().Str("paypal_subscription_id", ev.SubscriptionID).Msg("Payment for unknown subscription; ignoring")
		return nil
	}
	return err
}

func (s *subscriptionService) ExpireLapsed(ctx context.Context) (int, error) {
	users, err := s.userRepo.ListLapsedPremium(ctx, s.now())
	if err != nil {
		return 0, err
	}
	var errs []error
	expired := 0
	for _, u := range users {
		if err := s.subRepo.Expire(ctx, u.ID, model.SubscriptionExpired); err != nil {
			s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("Failed to expire subscription")
			errs = append(errs, err)
			continue
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info().Int("count", expired).Msg("Expired lapsed premium subscriptions")
	}
	return expired, errors.Join(errs...)
}
