package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ducksnap/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/blockloop/scan/v2"
)

// TicketRepository persists support tickets.
type TicketRepository interface {
	Create(ctx context.Context, t *model.SupportTicket) error
	ListByUser(ctx context.Context, userID int64) ([]model.SupportTicket, error)
}

type ticketRepo struct {
	db *sql.DB
}

func NewTicketRepo(db *sql.DB) TicketRepository {
	return &ticketRepo{db: db}
}

func (r *ticketRepo) Create(ctx context.Context, t *model.SupportTicket) error {
	query, args, err := psql.Insert("support_tickets").
		Columns("reference", "user_id", "subject", "message", "status", "priority").
		Values(t.Reference, t.UserID, t.Subject, t.Message, t.Status, t.Priority).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert ticket: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("insert ticket for user %d: %w", t.UserID, err)
	}
	return nil
}

func (r *ticketRepo) ListByUser(ctx context.Context, userID int64) ([]model.SupportTicket, error) {
	query, args, err := psql.Select("id", "reference", "user_id", "subject", "message", "status", "priority", "created_at", "updated_at").
		From("support_tickets").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select tickets: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets for user %d: %w", userID, err)
	}
	defer rows.Close()

	tickets := []model.SupportTicket{}
	if err := scan.Rows(&tickets, rows); err != nil {
		return nil, fmt.Errorf("scan tickets: %w", err)
	}
	return tickets, nil
}
