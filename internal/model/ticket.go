package model

import (
	"time"

	"github.com/google/uuid"
)

// Ticket statuses and priorities.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"

	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// SupportTicket is a help request raised from the help page.
type SupportTicket struct {
	ID        int64     `db:"id" json:"id"`
	Reference uuid.UUID `db:"reference" json:"reference"`
	UserID    int64     `db:"user_id" json:"userId"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	Status    string    `db:"status" json:"status"`
	Priority  string    `db:"priority" json:"priority"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
