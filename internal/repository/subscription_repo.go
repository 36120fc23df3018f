package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ducksnap/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/blockloop/scan/v2"
)

var subscriptionColumns = []string{"id", "user_id", "plan_id", "status", "paypal_subscription_id", "paypal_payer_id", "renews_at", "cancelled_at", "created_at", "updated_at"}

var planColumns = []string{"id", "name", "tier", "billing_period", "price", "currency", "features"}

// SubscriptionRepository defines methods for accessing subscription data.
type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*model.Subscription, error)
	GetByPayPalID(ctx context.Context, paypalSubscriptionID string) (*model.Subscription, error)
	// UpsertPending records a checkout that is waiting for PayPal approval.
	UpsertPending(ctx context.Context, userID int64, planID, paypalSubscriptionID string) error
	// Activate marks the subscription active and promotes the user to premium until renewsAt, atomically.
	Activate(ctx context.Context, userID int64, planID, paypalSubscriptionID, payerID string, renewsAt time.Time) error
	// Cancel flags the subscription cancelled; the tier is left untouched until expiry.
	Cancel(ctx context.Context, userID int64, at time.Time) error
	// Expire downgrades the user to free and closes the subscription with the given status.
	Expire(ctx context.Context, userID int64, status string) error
	// ExtendRenewal moves the renewal date forward after a completed payment and
	// reactivates a subscription that was expired or suspended in the meantime.
	ExtendRenewal(ctx context.Context, paypalSubscriptionID string, renewsAt time.Time) error
	ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error)
	GetPlan(ctx context.Context, planID string) (*model.SubscriptionPlan, error)
}

type subscriptionRepo struct {
	db *sql.DB
}

// NewSubscriptionRepo creates a new SubscriptionRepository.
func NewSubscriptionRepo(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) GetByUserID(ctx context.Context, userID int64) (*model.Subscription, error) {
	return r.getOne(ctx, sq.Eq{"user_id": userID})
}

func (r *subscriptionRepo) GetByPayPalID(ctx context.Context, paypalSubscriptionID string) (*model.Subscription, error) {
	return r.getOne(ctx, sq.Eq{"paypal_subscription_id": paypalSubscriptionID})
}

func (r *subscriptionRepo) getOne(ctx context.Context, where sq.Eq) (*model.Subscription, error) {
	query, args, err := psql.Select(subscriptionColumns...).From("subscriptions").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select subscription: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscription: %w", err)
	}
	defer rows.Close()

	var s model.Subscription
	if err := scan.Row(&s, rows); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	return &s, nil
}

func (r *subscriptionRepo) UpsertPending(ctx context.Context, userID int64, planID, paypalSubscriptionID string) error {
	query, args, err := psql.Insert("subscriptions").
		Columns("user_id", "plan_id", "status", "paypal_subscription_id").
		Values(userID, planID, model.SubscriptionPending, paypalSubscriptionID).
		Suffix(`ON CONFLICT (user_id) DO UPDATE
			SET plan_id = EXCLUDED.plan_id,
				status = EXCLUDED.status,
				paypal_subscription_id = EXCLUDED.paypal_subscription_id,
				cancelled_at = NULL,
				updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert pending subscription: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert pending subscription for user %d: %w", userID, err)
	}
	return nil
}

func (r *subscriptionRepo) Activate(ctx context.Context, userID int64, planID, paypalSubscriptionID, payerID string, renewsAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := psql.Insert("subscriptions").
		Columns("user_id", "plan_id", "status", "paypal_subscription_id", "paypal_payer_id", "renews_at").
		Values(userID, planID, model.SubscriptionActive, nullable(paypalSubscriptionID), nullable(payerID), renewsAt).
		Suffix(`ON CONFLICT (user_id) DO UPDATE
			SET plan_id = EXCLUDED.plan_id,
				status = EXCLUDED.status,
				paypal_subscription_id = EXCLUDED.paypal_subscription_id,
				paypal_payer_id = EXCLUDED.paypal_payer_id,
				renews_at = EXCLUDED.renews_at,
				cancelled_at = NULL,
				updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build activate subscription: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("activate subscription for user %d: %w", userID, err)
	}
	if err := setTier(ctx, tx, userID, model.TierPremium, &renewsAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activate tx: %w", err)
	}
	return nil
}

func (r *subscriptionRepo) Cancel(ctx context.Context, userID int64, at time.Time) error {
	query, args, err := psql.Update("subscriptions").
		Set("status", model.SubscriptionCancelled).
		Set("cancelled_at", at).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cancel subscription: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("cancel subscription for user %d: %w", userID, err)
	}
	return nil
}

func (r *subscriptionRepo) Expire(ctx context.Context, userID int64, status string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin expire tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := psql.Update("subscriptions").
		Set("status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build expire subscription: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("expire subscription for user %d: %w", userID, err)
	}
	if err := setTier(ctx, tx, userID, model.TierFree, nil); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expire tx: %w", err)
	}
	return nil
}

func (r *subscriptionRepo) ExtendRenewal(ctx context.Context, paypalSubscriptionID string, renewsAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin extend tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// A payment landing after the expiry sweep reopens the subscription.
	query, args, err := psql.Update("subscriptions").
		Set("renews_at", renewsAt).
		Set("status", sq.Expr("CASE WHEN status IN (?, ?) THEN ? ELSE status END",
			model.SubscriptionExpired, model.SubscriptionSuspended, model.SubscriptionActive)).
		Set("cancelled_at", sq.Expr("CASE WHEN status IN (?, ?) THEN NULL ELSE cancelled_at END",
			model.SubscriptionExpired, model.SubscriptionSuspended)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"paypal_subscription_id": paypalSubscriptionID}).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build extend renewal: %w", err)
	}
	var userID int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&userID); err != nil {
		return fmt.Errorf("extend renewal for %s: %w", paypalSubscriptionID, err)
	}
	if err := setTier(ctx, tx, userID, model.TierPremium, &renewsAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit extend tx: %w", err)
	}
	return nil
}

func (r *subscriptionRepo) ListPlans(ctx context.Context) ([]model.SubscriptionPlan, error) {
	query, args, err := psql.Select(planColumns...).From("subscription_plans").OrderBy("price ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select plans: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var plans []model.SubscriptionPlan
	if err := scan.Rows(&plans, rows); err != nil {
		return nil, fmt.Errorf("scan plans: %w", err)
	}
	return plans, nil
}

// GetPlan returns the plan or nil when it does not exist.
func (r *subscriptionRepo) GetPlan(ctx context.Context, planID string) (*model.SubscriptionPlan, error) {
	query, args, err := psql.Select(planColumns...).From("subscription_plans").Where(sq.Eq{"id": planID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select plan: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plan %s: %w", planID, err)
	}
	defer rows.Close()

	var p model.SubscriptionPlan
	if err := scan.Row(&p, rows); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan plan %s: %w", planID, err)
	}
	return &p, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
