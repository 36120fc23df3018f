package repository

import (
	"context"
	"testing"
	"time"

	"ducksnap/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepo(db)
	ref := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO support_tickets \(reference,user_id,subject,message,status,priority\)`).
		WithArgs(sqlmock.AnyArg(), int64(2), "Sync broken", "No data since Monday", model.TicketOpen, model.PriorityHigh).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	ticket := &model.SupportTicket{
		Reference: ref,
		UserID:    2,
		Subject:   "Sync broken",
		Message:   "No data since Monday",
		Status:    model.TicketOpen,
		Priority:  model.PriorityHigh,
	}
	require.NoError(t, repo.Create(context.Background(), ticket))
	assert.Equal(t, int64(11), ticket.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepo_ListByUserEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepo(db)

	mock.ExpectQuery(`SELECT .* FROM support_tickets WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reference", "user_id", "subject", "message", "status", "priority", "created_at", "updated_at"}))

	tickets, err := repo.ListByUser(context.Background(), 2)
	require.NoError(t, err)
	assert.NotNil(t, tickets)
	assert.Empty(t, tickets)
}
