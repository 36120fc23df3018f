package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"ducksnap/internal/api/v1/dto"
	"ducksnap/internal/service"

	"github.com/rs/zerolog"
)

type ConnectHandler struct {
	connectService service.ConnectService
	logger         zerolog.Logger
}

func NewConnectHandler(connectService service.ConnectService, logger zerolog.Logger) *ConnectHandler {
	return &ConnectHandler{
		connectService: connectService,
		logger:         logger.With().Str("handler", "ConnectHandler").Logger(),
	}
}

// RegisterRoutes mounts Snapchat linking routes. The callback is reached by
// redirect from Snapchat and is authorised by its single-use state.
func (h *ConnectHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /connect/snapchat", authMw(http.HandlerFunc(h.start)))
	mux.HandleFunc("GET /connect/snapchat/callback", h.callback)
	mux.Handle("DELETE /connect/snapchat", authMw(http.HandlerFunc(h.unlink)))
	mux.Handle("POST /connect/snapchat/sync", authMw(http.HandlerFunc(h.sync)))
	mux.Handle("GET /connect/status", authMw(http.HandlerFunc(h.status)))
}

// start godoc
// @Summary Start Snapchat linking
// @Description Redirects to the Snapchat consent page.
// @Tags connect
// @Success 302
// @Router /connect/snapchat [get]
func (h *ConnectHandler) start(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	authURL, err := h.connectService.StartLink(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to start Snapchat linking")
		writeError(w, http.StatusInternalServerError, "Failed to start Snapchat linking")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// callback godoc
// @Summary Snapchat OAuth2 callback
// @Tags connect
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /connect/snapchat"
// @Success 302
// @Failure 400 {object} dto.ErrorResponse
// @Router /connect/snapchat/callback [get]
func (h *ConnectHandler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.logger.Info().Str("error", e).Msg("Snapchat consent declined")
		http.Redirect(w, r, "/connect?error="+e, http.StatusFound)
		return
	}
	_, err := h.connectService.CompleteLink(r.Context(), q.Get("state"), q.Get("code"))
	if errors.Is(err, service.ErrInvalidState) {
		writeError(w, http.StatusBadRequest, "Invalid or expired link request")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to link Snapchat account")
		return
	}
	http.Redirect(w, r, "/dashboard?connected=1", http.StatusFound)
}

// status godoc
// @Summary Snapchat link status
// @Tags connect
// @Produce json
// @Success 200 {object} service.ConnectionStatus
// @Router /connect/status [get]
func (h *ConnectHandler) status(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	st, err := h.connectService.Status(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load connection status")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// unlink godoc
// @Summary Unlink Snapchat
// @Tags connect
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /connect/snapchat [delete]
func (h *ConnectHandler) unlink(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	err := h.connectService.Unlink(r.Context(), userID)
	if errors.Is(err, service.ErrNotLinked) {
		writeError(w, http.StatusNotFound, "No Snapchat account linked")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to unlink Snapchat account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sync godoc
// @Summary Request a manual sync
// @Tags connect
// @Produce json
// @Success 202 {object} dto.SyncResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /connect/snapchat/sync [post]
func (h *ConnectHandler) sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	err := h.connectService.RequestSync(r.Context(), userID)
	var cooldown *service.CooldownError
	switch {
	case errors.As(err, &cooldown):
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(cooldown.Remaining.Seconds()))))
		writeError(w, http.StatusTooManyRequests, cooldown.Error())
		return
	case errors.Is(err, service.ErrNotLinked):
		writeError(w, http.StatusNotFound, "No Snapchat account linked")
		return
	case err != nil:
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to queue sync")
		writeError(w, http.StatusInternalServerError, "Failed to queue sync")
		return
	}
	writeJSON(w, http.StatusAccepted, dto.SyncResponse{Queued: true})
}
