package handler

import (
	"errors"
	"net/http"

	"ducksnap/internal/api/v1/dto"
	"ducksnap/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type SettingsHandler struct {
	userService    service.UserService
	subService     service.SubscriptionService
	connectService service.ConnectService
	validate       *validator.Validate
	logger         zerolog.Logger
}

func NewSettingsHandler(userService service.UserService, subService service.SubscriptionService, connectService service.ConnectService, validate *validator.Validate, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		userService:    userService,
		subService:     subService,
		connectService: connectService,
		validate:       validate,
		logger:         logger.With().Str("handler", "SettingsHandler").Logger(),
	}
}

func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /settings", authMw(http.HandlerFunc(h.get)))
	mux.Handle("PATCH /settings", authMw(http.HandlerFunc(h.update)))
}

// get godoc
// @Summary Settings page data
// @Tags settings
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Router /settings [get]
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.respond(w, r, userID)
}

// update godoc
// @Summary Update profile settings
// @Tags settings
// @Accept json
// @Produce json
// @Param body body dto.SettingsUpdateRequest true "Fields to change"
// @Success 200 {object} dto.SettingsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /settings [patch]
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.SettingsUpdateRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if req.Email != nil {
		_, err := h.userService.UpdateEmail(r.Context(), userID, *req.Email)
		if errors.Is(err, service.ErrUserExists) {
			writeError(w, http.StatusConflict, "Email already in use")
			return
		}
		if err != nil {
			h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to update email")
			writeError(w, http.StatusInternalServerError, "Failed to update settings")
			return
		}
	}
	h.respond(w, r, userID)
}

func (h *SettingsHandler) respond(w http.ResponseWriter, r *http.Request, userID int64) {
	u, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	sub, err := h.subService.GetStatus(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	conn, err := h.connectService.Status(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, dto.SettingsResponse{User: dto.NewUserResponse(u), Subscription: sub, Connection: conn})
}
