package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"ducksnap/internal/api/v1/dto"
	"ducksnap/internal/paypal"
	"ducksnap/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// PayPalWebhooks processes the two PayPal notification paths.
type PayPalWebhooks interface {
	ActivateSubscription(ctx context.Context, subscriptionID, payerID string) error
	HandleNotification(ctx context.Context, header http.Header, body []byte) (*paypal.Event, bool, error)
}

type PayPalHandler struct {
	webhooks PayPalWebhooks
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewPayPalHandler(webhooks PayPalWebhooks, validate *validator.Validate, logger zerolog.Logger) *PayPalHandler {
	return &PayPalHandler{
		webhooks: webhooks,
		validate: validate,
		logger:   logger.With().Str("handler", "PayPalHandler").Logger(),
	}
}

// RegisterRoutes mounts the unauthenticated PayPal callbacks
func (h *PayPalHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /paypal/webhook", h.webhook)
	mux.HandleFunc("POST /paypal/events", h.events)
}

// webhook godoc
// @Summary PayPal approval callback
// @Description Activates the approved PayPal subscription and grants premium.
// @Tags paypal
// @Accept json
// @Produce json
// @Param body body dto.PayPalWebhookRequest true "Approved subscription"
// @Success 200 {object} dto.WebhookResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /paypal/webhook [post]
func (h *PayPalHandler) webhook(w http.ResponseWriter, r *http.Request) {
	var req dto.PayPalWebhookRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		h.logger.Warn().Err(err).Msg("Invalid PayPal webhook payload")
		writeError(w, http.StatusInternalServerError, "Failed to process subscription")
		return
	}
	if err := h.webhooks.ActivateSubscription(r.Context(), req.SubscriptionID, req.PayerID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process subscription")
		return
	}
	writeJSON(w, http.StatusOK, dto.WebhookResponse{Success: true, Message: "Subscription activated successfully"})
}

// events godoc
// @Summary PayPal event notifications
// @Description Verifies, deduplicates and applies PayPal subscription and payment events.
// @Tags paypal
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /paypal/events [post]
func (h *PayPalHandler) events(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}
	_, duplicate, err := h.webhooks.HandleNotification(r.Context(), r.Header, body)
	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		writeError(w, http.StatusUnauthorized, "Invalid webhook signature")
		return
	case errors.Is(err, service.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, "Malformed event")
		return
	case err != nil:
		// A non-2xx makes PayPal redeliver the event.
		writeError(w, http.StatusInternalServerError, "Failed to process event")
		return
	}
	msg := "Event processed"
	if duplicate {
		msg = "Event already processed"
	}
	writeJSON(w, http.StatusOK, dto.WebhookResponse{Success: true, Message: msg})
}
