package repository

import (
	"context"
	"testing"
	"time"

	"ducksnap/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapchatRepo_LatestSnapshotsExcept(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapchatRepo(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "data", "fetched_at"}).
		AddRow(int64(1), int64(2), []byte(`{"displayName":"a","followers":100,"engagementRate":0.1}`), now).
		AddRow(int64(2), int64(3), []byte(`{"displayName":"b","followers":200,"engagementRate":0.2}`), now)
	mock.ExpectQuery(`SELECT DISTINCT ON \(d.user_id\) d.id, d.user_id, d.data, d.fetched_at FROM snapchat_data d ` +
		`JOIN snapchat_accounts a ON a.user_id = d.user_id WHERE d.user_id <> \$1 ORDER BY d.user_id, d.fetched_at DESC`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	snaps, err := repo.LatestSnapshotsExcept(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(200), snaps[1].Data.Followers)
	assert.Equal(t, "a", snaps[0].Data.DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapchatRepo_SaveSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapchatRepo(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO snapchat_data \(user_id,data\) VALUES \(\$1,\$2\) RETURNING id, fetched_at`).
		WithArgs(int64(4), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fetched_at"}).AddRow(int64(10), now))

	snap, err := repo.SaveSnapshot(context.Background(), 4, model.SnapshotMetrics{Followers: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(10), snap.ID)
	assert.Equal(t, int64(50), snap.Data.Followers)
}

func TestSnapchatRepo_GetAccountMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapchatRepo(db)

	mock.ExpectQuery(`SELECT .* FROM snapchat_accounts WHERE user_id = \$1`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(accountColumns))

	acct, err := repo.GetAccount(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, acct)
}
