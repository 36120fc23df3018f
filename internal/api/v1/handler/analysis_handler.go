package handler

import (
	"errors"
	"net/http"

	"ducksnap/internal/service"

	"github.com/rs/zerolog"
)

// PremiumGate builds a middleware that rejects free users with the given upgrade prompt.
type PremiumGate func(upgradePrompt string) func(http.Handler) http.Handler

type AnalysisHandler struct {
	analysisService service.AnalysisService
	logger          zerolog.Logger
}

func NewAnalysisHandler(analysisService service.AnalysisService, logger zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger.With().Str("handler", "AnalysisHandler").Logger(),
	}
}

// RegisterRoutes mounts competitor analysis routes. generateMw throttles regeneration.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler, premium PremiumGate, generateMw func(http.Handler) http.Handler) {
	gate := premium(service.UpgradePrompts[service.PanelCompetitorAnalysis])
	mux.Handle("GET /competitor-analysis", authMw(gate(http.HandlerFunc(h.getLatest))))
	mux.Handle("POST /competitor-analysis/generate", authMw(gate(generateMw(http.HandlerFunc(h.generate)))))
}

// getLatest godoc
// @Summary Latest competitor analysis
// @Description Returns null when no analysis has been generated yet.
// @Tags analysis
// @Produce json
// @Success 200 {object} model.CompetitorAnalysis
// @Failure 403 {object} dto.UpgradeRequiredResponse
// @Router /competitor-analysis [get]
func (h *AnalysisHandler) getLatest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	a, err := h.analysisService.GetLatest(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load competitor analysis")
		writeError(w, http.StatusInternalServerError, "Failed to load competitor analysis")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// generate godoc
// @Summary Generate a competitor analysis
// @Tags analysis
// @Produce json
// @Success 201 {object} model.CompetitorAnalysis
// @Failure 403 {object} dto.UpgradeRequiredResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /competitor-analysis/generate [post]
func (h *AnalysisHandler) generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	a, err := h.analysisService.Generate(r.Context(), userID)
	switch {
	case errors.Is(err, service.ErrNoSnapshot):
		writeError(w, http.StatusConflict, "Connect and sync your Snapchat account before generating an analysis")
		return
	case errors.Is(err, service.ErrEmptyCohort):
		writeError(w, http.StatusConflict, "Not enough creators to compare against yet")
		return
	case err != nil:
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to generate competitor analysis")
		writeError(w, http.StatusInternalServerError, "Failed to generate competitor analysis")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}
