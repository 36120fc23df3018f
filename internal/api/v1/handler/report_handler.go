package handler

import (
	"errors"
	"net/http"

	"ducksnap/internal/api/v1/dto"
	"ducksnap/internal/model"
	"ducksnap/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const exportUpgradePrompt = "Upgrade to Premium to export your analytics as CSV or JSON."

type ReportHandler struct {
	reportService service.ReportService
	validate      *validator.Validate
	logger        zerolog.Logger
}

func NewReportHandler(reportService service.ReportService, validate *validator.Validate, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		validate:      validate,
		logger:        logger.With().Str("handler", "ReportHandler").Logger(),
	}
}

func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler, premium PremiumGate) {
	mux.Handle("GET /reports/history", authMw(http.HandlerFunc(h.history)))
	mux.Handle("POST /reports/export", authMw(premium(exportUpgradePrompt)(http.HandlerFunc(h.export))))
	mux.Handle("GET /insights", authMw(premium(service.UpgradePrompts[service.PanelAIInsights])(http.HandlerFunc(h.insights))))
}

// history godoc
// @Summary Snapshot history within the plan's retention window
// @Tags reports
// @Produce json
// @Success 200 {object} service.ReportHistory
// @Router /reports/history [get]
func (h *ReportHandler) history(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	hist, err := h.reportService.History(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load report history")
		writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if hist.Snapshots == nil {
		hist.Snapshots = []model.SnapchatSnapshot{}
	}
	writeJSON(w, http.StatusOK, hist)
}

// export godoc
// @Summary Export history
// @Description Uploads the history and returns a download link valid for 15 minutes.
// @Tags reports
// @Accept json
// @Produce json
// @Param body body dto.ExportRequest true "Export format"
// @Success 201 {object} service.ExportResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.UpgradeRequiredResponse
// @Router /reports/export [post]
func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	res, err := h.reportService.Export(r.Context(), userID, req.Format)
	if errors.Is(err, service.ErrInvalidFormat) {
		writeError(w, http.StatusBadRequest, "Format must be csv or json")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export report")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// insights godoc
// @Summary Recent AI insights
// @Tags reports
// @Produce json
// @Success 200 {array} model.Insight
// @Failure 403 {object} dto.UpgradeRequiredResponse
// @Router /insights [get]
func (h *ReportHandler) insights(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.reportService.Insights(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load insights")
		return
	}
	if list == nil {
		list = []model.Insight{}
	}
	writeJSON(w, http.StatusOK, list)
}
