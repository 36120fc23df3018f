package handler

import (
	"errors"
	"net/http"

	"ducksnap/internal/api/v1/dto"
	"ducksnap/internal/model"
	"ducksnap/internal/service"

	"github.com/rs/zerolog"
)

type SupportHandler struct {
	supportService service.SupportService
	content        *service.ContentService
	logger         zerolog.Logger
}

func NewSupportHandler(supportService service.SupportService, content *service.ContentService, logger zerolog.Logger) *SupportHandler {
	return &SupportHandler{
		supportService: supportService,
		content:        content,
		logger:         logger.With().Str("handler", "SupportHandler").Logger(),
	}
}

// RegisterRoutes mounts support tickets and static help content
func (h *SupportHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /support/tickets", authMw(http.HandlerFunc(h.createTicket)))
	mux.Handle("GET /support/tickets", authMw(http.HandlerFunc(h.listTickets)))
	mux.HandleFunc("GET /help/faq", h.faq)
	mux.HandleFunc("GET /help/prerequisites", h.prerequisites)
}

// createTicket godoc
// @Summary Submit a support ticket
// @Tags support
// @Accept json
// @Produce json
// @Param body body dto.TicketRequest true "Ticket"
// @Success 201 {object} dto.TicketResponse
// @Failure 400 {object} dto.ToastResponse
// @Router /support/tickets [post]
func (h *SupportHandler) createTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.TicketRequest
	if err := decodeJSON(r, nil, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	res, err := h.supportService.CreateTicket(r.Context(), userID, req.Subject, req.Message)
	if errors.Is(err, service.ErrMissingTicketFields) {
		writeJSON(w, http.StatusBadRequest, dto.ToastResponse{
			Title:       "Missing Information",
			Description: "Please fill in both subject and message fields",
		})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to create support ticket")
		writeError(w, http.StatusInternalServerError, "Failed to submit ticket")
		return
	}
	writeJSON(w, http.StatusCreated, dto.TicketResponse{Ticket: res.Ticket, Message: res.Message})
}

// listTickets godoc
// @Summary List my support tickets
// @Tags support
// @Produce json
// @Success 200 {array} model.SupportTicket
// @Router /support/tickets [get]
func (h *SupportHandler) listTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	tickets, err := h.supportService.ListTickets(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to list support tickets")
		writeError(w, http.StatusInternalServerError, "Failed to load tickets")
		return
	}
	if tickets == nil {
		tickets = []model.SupportTicket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

// faq godoc
// @Summary Help page FAQ
// @Tags help
// @Produce json
// @Success 200 {array} service.FAQItem
// @Router /help/faq [get]
func (h *SupportHandler) faq(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.content.FAQ())
}

// prerequisites godoc
// @Summary Snapchat connection prerequisites
// @Tags help
// @Produce json
// @Success 200 {object} service.Prerequisites
// @Router /help/prerequisites [get]
func (h *SupportHandler) prerequisites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.content.Prerequisites())
}
