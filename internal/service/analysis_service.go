package service

import (
	"context"
	"time"

	"ducksnap/internal/analysis"
	"ducksnap/internal/model"
	"ducksnap/internal/repository"

	"github.com/rs/zerolog"
)

type AnalysisService interface {
	// GetLatest returns the newest stored analysis, or nil when none exists.
	GetLatest(ctx context.Context, userID int64) (*model.CompetitorAnalysis, error)
	// Generate benchmarks the user's latest snapshot against other creators and stores the result.
	Generate(ctx context.Context, userID int64) (*model.CompetitorAnalysis, error)
}

type analysisService struct {
	analysisRepo repository.AnalysisRepository
	snapRepo     repository.SnapchatRepository
	logger       zerolog.Logger
	now          func() time.Time
}

func NewAnalysisService(analysisRepo repository.AnalysisRepository, snapRepo repository.SnapchatRepository, logger zerolog.Logger) AnalysisService {
	return &analysisService{
		analysisRepo: analysisRepo,
		snapRepo:     snapRepo,
		logger:       logger.With().Str("service", "AnalysisService").Logger(),
		now:          time.Now,
	}
}

func (s *analysisService) GetLatest(ctx context.Context, userID int64) (*model.CompetitorAnalysis, error) {
	return s.analysisRepo.GetLatest(ctx, userID)
}

func (s *analysisService) Generate(ctx context.Context, userID int64) (*model.CompetitorAnalysis, error) {
	latest, err := s.snapRepo.RecentSnapshots(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, ErrNoSnapshot
	}
	cohort, err := s.snapRepo.LatestSnapshotsExcept(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cohort) == 0 {
		return nil, ErrEmptyCohort
	}

	a := analysis.Generate(userID, latest[0].Data, cohort, s.now().UTC())
	if err := s.analysisRepo.Create(ctx, a); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to store competitor analysis")
		return nil, err
	}
	s.logger.Info().
		Int64("user_id", userID).
		Int("ranking", a.UserRanking).
		Int("total", a.TotalCompetitors).
		Str("position", a.Insights.MarketPosition).
		Msg("Competitor analysis generated")
	return a, nil
}
