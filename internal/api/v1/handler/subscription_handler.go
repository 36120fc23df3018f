package handler

import (
	"errors"
	"net/http"

	"ducksnap/internal/api/v1/dto"
	"ducksnap/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type SubscriptionHandler struct {
	subService service.SubscriptionService
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewSubscriptionHandler(subService service.SubscriptionService, validate *validator.Validate, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subService: subService,
		validate:   validate,
		logger:     logger.With().Str("handler", "SubscriptionHandler").Logger(),
	}
}

// RegisterRoutes mounts subscription and pricing routes
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /subscription", authMw(http.HandlerFunc(h.getStatus)))
	mux.Handle("POST /subscription/upgrade", authMw(http.HandlerFunc(h.upgrade)))
	mux.Handle("POST /subscription/cancel", authMw(http.HandlerFunc(h.cancel)))
	mux.HandleFunc("GET /pricing/plans", h.listPlans)
}

// getStatus godoc
// @Summary Current subscription
// @Tags subscription
// @Produce json
// @Success 200 {object} service.SubscriptionStatus
// @Failure 401 {object} dto.ErrorResponse
// @Router /subscription [get]
func (h *SubscriptionHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	st, err := h.subService.GetStatus(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load subscription")
		writeError(w, http.StatusInternalServerError, "Failed to load subscription")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// upgrade godoc
// @Summary Upgrade to premium
// @Description Without subscriptionId a PayPal checkout is created and its approval URL returned.
// @Description With subscriptionId the approved PayPal subscription is verified and activated.
// @Tags subscription
// @Accept json
// @Produce json
// @Param body body dto.UpgradeRequest true "Plan and optional PayPal subscription id"
// @Success 200 {object} service.SubscriptionStatus
// @Success 201 {object} dto.CheckoutResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /subscription/upgrade [post]
func (h *SubscriptionHandler) upgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.UpgradeRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	res, err := h.subService.Upgrade(r.Context(), userID, req.Plan, req.SubscriptionID)
	switch {
	case errors.Is(err, service.ErrInvalidPlan):
		writeError(w, http.StatusBadRequest, "Invalid subscription plan")
		return
	case errors.Is(err, service.ErrAlreadyPremium):
		writeError(w, http.StatusConflict, "You already have an active premium subscription")
		return
	case errors.Is(err, service.ErrSubscriptionInactive), errors.Is(err, service.ErrSubscriptionMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to upgrade subscription")
		writeError(w, http.StatusBadGateway, "Failed to start checkout")
		return
	}

	if res.Subscription != nil {
		writeJSON(w, http.StatusOK, res.Subscription)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CheckoutResponse{ApprovalURL: res.ApprovalURL, SubscriptionID: res.SubscriptionID})
}

// cancel godoc
// @Summary Cancel premium at period end
// @Tags subscription
// @Produce json
// @Success 200 {object} service.SubscriptionStatus
// @Failure 400 {object} dto.ErrorResponse
// @Router /subscription/cancel [post]
func (h *SubscriptionHandler) cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	st, err := h.subService.Cancel(r.Context(), userID)
	if errors.Is(err, service.ErrNoActiveSubscription) {
		writeError(w, http.StatusBadRequest, "No active premium subscription")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to cancel subscription")
		writeError(w, http.StatusInternalServerError, "Failed to cancel subscription")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// listPlans godoc
// @Summary Pricing plans
// @Tags pricing
// @Produce json
// @Success 200 {array} dto.PlanResponse
// @Router /pricing/plans [get]
func (h *SubscriptionHandler) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.subService.ListPlans(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list plans")
		writeError(w, http.StatusInternalServerError, "Failed to load plans")
		return
	}
	resp := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, dto.NewPlanResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}
