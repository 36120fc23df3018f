package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ducksnap/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUserRepo_CreateUser(t *testing.T) {
	t.Run("returns generated id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepo(db)
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO users \(username,email,password_hash,subscription\)`).
			WithArgs("duck", "duck@example.com", "hash", model.TierFree).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

		u := &model.User{Username: "duck", Email: "duck@example.com", PasswordHash: "hash"}
		require.NoError(t, repo.CreateUser(context.Background(), u))
		assert.Equal(t, int64(7), u.ID)
		assert.Equal(t, model.TierFree, u.Subscription)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to ErrConflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepo(db)

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.CreateUser(context.Background(), &model.User{Username: "duck"})
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestUserRepo_GetUserByID(t *testing.T) {
	t.Run("finds user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepo(db)
		now := time.Now()
		expires := now.Add(24 * time.Hour)

		rows := sqlmock.NewRows(userColumns).
			AddRow(int64(3), "duck", "duck@example.com", "hash", model.TierPremium, expires, now, now)
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1 LIMIT 1`).
			WithArgs(int64(3)).
			WillReturnRows(rows)

		u, err := repo.GetUserByID(context.Background(), 3)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "duck", u.Username)
		assert.Equal(t, model.TierPremium, u.Subscription)
		require.NotNil(t, u.SubscriptionExpiresAt)
		assert.True(t, u.SubscriptionExpiresAt.Equal(expires))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil when missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepo(db)

		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(userColumns))

		u, err := repo.GetUserByID(context.Background(), 99)
		assert.NoError(t, err)
		assert.Nil(t, u)
	})
}

func TestUserRepo_ListLinkedUserIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`SELECT u.id FROM users u JOIN snapchat_accounts s ON s.user_id = u.id WHERE u.subscription = \$1`).
		WithArgs(model.TierPremium).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(4)))

	ids, err := repo.ListLinkedUserIDs(context.Background(), model.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ListLapsedPremium(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lapsed := now.Add(-time.Hour)

	mock.ExpectQuery(`SELECT id, username, email, password_hash, subscription, subscription_expires_at, created_at, updated_at FROM users WHERE subscription = \$1 AND subscription_expires_at < \$2$`).
		WithArgs(model.TierPremium, now).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(4), "duck", "duck@example.com", "hash", model.TierPremium, lapsed, now, now))

	users, err := repo.ListLapsedPremium(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(4), users[0].ID)
	require.NotNil(t, users[0].SubscriptionExpiresAt)
	assert.True(t, users[0].SubscriptionExpiresAt.Equal(lapsed))
	assert.NoError(t, mock.ExpectationsWereMet())
}
