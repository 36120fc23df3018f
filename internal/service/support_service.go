package service

import (
	"context"
	"strings"
	"time"

	"ducksnap/internal/model"
	"ducksnap/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Confirmation texts returned after a ticket is filed.
const (
	TicketReceivedPremium = "Your ticket has been received. A support agent will respond within 24 hours."
	TicketReceivedFree    = "Your ticket has been received. We'll review your request as soon as possible."
)

type TicketResult struct {
	Ticket  *model.SupportTicket
	Message string
}

type SupportService interface {
	CreateTicket(ctx context.Context, userID int64, subject, message string) (*TicketResult, error)
	ListTickets(ctx context.Context, userID int64) ([]model.SupportTicket, error)
}

type supportService struct {
	userRepo   repository.UserRepository
	ticketRepo repository.TicketRepository
	logger     zerolog.Logger
	now        func() time.Time
}

func NewSupportService(userRepo repository.UserRepository, ticketRepo repository.TicketRepository, logger zerolog.Logger) SupportService {
	return &supportService{
		userRepo:   userRepo,
		ticketRepo: ticketRepo,
		logger:     logger.With().Str("service", "SupportService").Logger(),
		now:        time.Now,
	}
}

func (s *supportService) CreateTicket(ctx context.Context, userID int64, subject, message string) (*TicketResult, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if subject == "" || message == "" {
		return nil, ErrMissingTicketFields
	}

	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	premium := u.IsPremium(s.now())

	t := &model.SupportTicket{
		Reference: uuid.New(),
		UserID:    userID,
		Subject:   subject,
		Message:   message,
		Status:    model.TicketOpen,
		Priority:  model.PriorityNormal,
	}
	if premium {
		t.Priority = model.PriorityHigh
	}
	if err := s.ticketRepo.Create(ctx, t); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to create support ticket")
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Str("reference", t.Reference.String()).Str("priority", t.Priority).Msg("Support ticket created")

	msg := TicketReceivedFree
	if premium {
		msg = TicketReceivedPremium
	}
	return &TicketResult{Ticket: t, Message: msg}, nil
}

func (s *supportService) ListTickets(ctx context.Context, userID int64) ([]model.SupportTicket, error) {
	return s.ticketRepo.ListByUser(ctx, userID)
}
