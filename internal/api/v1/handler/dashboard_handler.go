package handler

import (
	"net/http"

	"ducksnap/internal/service"

	"github.com/rs/zerolog"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           zerolog.Logger
}

func NewDashboardHandler(dashboardService service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger.With().Str("handler", "DashboardHandler").Logger(),
	}
}

func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /dashboard", authMw(http.HandlerFunc(h.get)))
}

// get godoc
// @Summary Dashboard data
// @Description Overview for everyone; premium panels are locked with an upgrade prompt on the free tier.
// @Tags dashboard
// @Produce json
// @Success 200 {object} service.Dashboard
// @Failure 401 {object} dto.ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to build dashboard")
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
