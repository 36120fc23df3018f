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

var userColumns = []string{"id", "username", "email", "password_hash", "subscription", "subscription_expires_at", "created_at", "updated_at"}

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) error
	// SetTier changes the user's tier and expiry in one statement.
	SetTier(ctx context.Context, id int64, tier string, expiresAt *time.Time) error
	// ListLapsedPremium returns premium users whose expiry is before now.
	ListLapsedPremium(ctx context.Context, now time.Time) ([]model.User, error)
	// ListLinkedUserIDs returns users of the given tier that have a linked Snapchat account.
	ListLinkedUserIDs(ctx context.Context, tier string) ([]int64, error)
}

type userRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	if u.Subscription == "" {
		u.Subscription = model.TierFree
	}
	query, args, err := psql.Insert("users").
		Columns("username", "email", "password_hash", "subscription").
		Values(u.Username, u.Email, u.PasswordHash, u.Subscription).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, sq.Eq{"username": username})
}

func (r *userRepo) getOne(ctx context.Context, where sq.Eq) (*model.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	defer rows.Close()

	var u model.User
	if err := scan.Row(&u, rows); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) UpdateEmail(ctx context.Context, id int64, email string) error {
	query, args, err := psql.Update("users").
		Set("email", email).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update email: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("update email for user %d: %w", id, err)
	}
	return nil
}

func (r *userRepo) SetTier(ctx context.Context, id int64, tier string, expiresAt *time.Time) error {
	return setTier(ctx, r.db, id, tier, expiresAt)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setTier(ctx context.Context, db execer, id int64, tier string, expiresAt *time.Time) error {
	query, args, err := psql.Update("users").
		Set("subscription", tier).
		Set("subscription_expires_at", expiresAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update tier: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set tier %s for user %d: %w", tier, id, err)
	}
	return nil
}

func (r *userRepo) ListLapsedPremium(ctx context.Context, now time.Time) ([]model.User, error) {
	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(sq.Eq{"subscription": model.TierPremium}).
		Where(sq.Lt{"subscription_expires_at": now}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select lapsed users: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lapsed users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	if err := scan.Rows(&users, rows); err != nil {
		return nil, fmt.Errorf("scan lapsed users: %w", err)
	}
	return users, nil
}

func (r *userRepo) ListLinkedUserIDs(ctx context.Context, tier string) ([]int64, error) {
	query, args, err := psql.Select("u.id").
		From("users u").
		Join("snapchat_accounts s ON s.user_id = u.id").
		Where(sq.Eq{"u.subscription": tier}).
		OrderBy("u.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select linked users: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query linked users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	if err := scan.Rows(&ids, rows); err != nil {
		return nil, fmt.Errorf("scan linked users: %w", err)
	}
	return ids, nil
}
