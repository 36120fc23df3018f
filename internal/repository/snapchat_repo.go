package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ducksnap/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/blockloop/scan/v2"
)

var accountColumns = []string{"user_id", "external_id", "display_name", "avatar_url", "access_token", "refresh_token", "token_expires_at", "linked_at", "last_synced_at"}

// SnapchatRepository stores linked accounts and their metric snapshots.
type SnapchatRepository interface {
	UpsertAccount(ctx context.Context, a *model.SnapchatAccount) error
	GetAccount(ctx context.Context, userID int64) (*model.SnapchatAccount, error)
	DeleteAccount(ctx context.Context, userID int64) error
	UpdateTokens(ctx context.Context, userID int64, accessToken, refreshToken string, expiresAt *time.Time) error
	MarkSynced(ctx context.Context, userID int64, at time.Time) error

	SaveSnapshot(ctx context.Context, userID int64, data model.SnapshotMetrics) (*model.SnapchatSnapshot, error)
	// RecentSnapshots returns up to limit snapshots for the user, newest first.
	RecentSnapshots(ctx context.Context, userID int64, limit uint64) ([]model.SnapchatSnapshot, error)
	// SnapshotsSince returns the user's snapshots fetched at or after since, oldest first.
	SnapshotsSince(ctx context.Context, userID int64, since time.Time) ([]model.SnapchatSnapshot, error)
	// LatestSnapshotsExcept returns the newest snapshot of every other user.
	LatestSnapshotsExcept(ctx context.Context, userID int64) ([]model.SnapchatSnapshot, error)
}

type snapchatRepo struct {
	db *sql.DB
}

func NewSnapchatRepo(db *sql.DB) SnapchatRepository {
	return &snapchatRepo{db: db}
}

func (r *snapchatRepo) UpsertAccount(ctx context.Context, a *model.SnapchatAccount) error {
	query, args, err := psql.Insert("snapchat_accounts").
		Columns("user_id", "external_id", "display_name", "avatar_url", "access_token", "refresh_token", "token_expires_at").
		Values(a.UserID, a.ExternalID, a.DisplayName, a.AvatarURL, a.AccessToken, a.RefreshToken, a.TokenExpiresAt).
		Suffix(`ON CONFLICT (user_id) DO UPDATE
			SET external_id = EXCLUDED.external_id,
				display_name = EXCLUDED.display_name,
				avatar_url = EXCLUDED.avatar_url,
				access_token = EXCLUDED.access_token,
				refresh_token = EXCLUDED.refresh_token,
				token_expires_at = EXCLUDED.token_expires_at,
				linked_at = NOW()
			RETURNING linked_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert snapchat account: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&a.LinkedAt); err != nil {
		return fmt.Errorf("upsert snapchat account for user %d: %w", a.UserID, err)
	}
	return nil
}

func (r *snapchatRepo) GetAccount(ctx context.Context, userID int64) (*model.SnapchatAccount, error) {
	query, args, err := psql.Select(accountColumns...).From("snapchat_accounts").Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select snapchat account: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapchat account: %w", err)
	}
	defer rows.Close()

	var a model.SnapchatAccount
	if err := scan.Row(&a, rows); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan snapchat account: %w", err)
	}
	return &a, nil
}

func (r *snapchatRepo) DeleteAccount(ctx context.Context, userID int64) error {
	query, args, err := psql.Delete("snapchat_accounts").Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete snapchat account: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete snapchat account for user %d: %w", userID, err)
	}
	return nil
}

func (r *snapchatRepo) UpdateTokens(ctx context.Context, userID int64, accessToken, refreshToken string, expiresAt *time.Time) error {
	query, args, err := psql.Update("snapchat_accounts").
		Set("access_token", accessToken).
		Set("refresh_token", refreshToken).
		Set("token_expires_at", expiresAt).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update tokens: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update tokens for user %d: %w", userID, err)
	}
	return nil
}

func (r *snapchatRepo) MarkSynced(ctx context.Context, userID int64, at time.Time) error {
	query, args, err := psql.Update("snapchat_accounts").
		Set("last_synced_at", at).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark synced: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark synced for user %d: %w", userID, err)
	}
	return nil
}

func (r *snapchatRepo) SaveSnapshot(ctx context.Context, userID int64, data model.SnapshotMetrics) (*model.SnapchatSnapshot, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	query, args, err := psql.Insert("snapchat_data").
		Columns("user_id", "data").
		Values(userID, string(raw)).
		Suffix("RETURNING id, fetched_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert snapshot: %w", err)
	}
	s := &model.SnapchatSnapshot{UserID: userID, Data: data}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.FetchedAt); err != nil {
		return nil, fmt.Errorf("insert snapshot for user %d: %w", userID, err)
	}
	return s, nil
}

func (r *snapchatRepo) RecentSnapshots(ctx context.Context, userID int64, limit uint64) ([]model.SnapchatSnapshot, error) {
	return r.querySnapshots(ctx, psql.Select("id", "user_id", "data", "fetched_at").
		From("snapchat_data").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("fetched_at DESC").
		Limit(limit))
}

func (r *snapchatRepo) SnapshotsSince(ctx context.Context, userID int64, since time.Time) ([]model.SnapchatSnapshot, error) {
	return r.querySnapshots(ctx, psql.Select("id", "user_id", "data", "fetched_at").
		From("snapchat_data").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"fetched_at": since}).
		OrderBy("fetched_at ASC"))
}

// LatestSnapshotsExcept returns the newest snapshot of every other creator
// that still has a linked account. Snapshots of unlinked users are kept for
// history but never benchmarked against.
func (r *snapchatRepo) LatestSnapshotsExcept(ctx context.Context, userID int64) ([]model.SnapchatSnapshot, error) {
	return r.querySnapshots(ctx, psql.Select("d.id", "d.user_id", "d.data", "d.fetched_at").
		Options("DISTINCT ON (d.user_id)").
		From("snapchat_data d").
		Join("snapchat_accounts a ON a.user_id = d.user_id").
		Where(sq.NotEq{"d.user_id": userID}).
		OrderBy("d.user_id", "d.fetched_at DESC"))
}

func (r *snapchatRepo) querySnapshots(ctx context.Context, b sq.SelectBuilder) ([]model.SnapchatSnapshot, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select snapshots: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []model.SnapchatSnapshot{}
	for rows.Next() {
		var (
			s   model.SnapchatSnapshot
			raw []byte
		)
		if err := rows.Scan(&s.ID, &s.UserID, &raw, &s.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal(raw, &s.Data); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot %d: %w", s.ID, err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot rows: %w", err)
	}
	return snapshots, nil
}
