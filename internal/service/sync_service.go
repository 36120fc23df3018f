package service

import (
	"context"
	"errors"
	"time"

	"ducksnap/internal/analysis"
	"ducksnap/internal/model"
	"ducksnap/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// SyncService pulls fresh Snapchat metrics for linked accounts.
type SyncService interface {
	// Sync refreshes one user's metrics. Users without a linked account are skipped.
	Sync(ctx context.Context, userID int64) error
	// FanOut queues a sync for every linked user of the given tier.
	FanOut(ctx context.Context, tier string) (int, error)
}

type syncService struct {
	userRepo    repository.UserRepository
	snapRepo    repository.SnapchatRepository
	insightRepo repository.InsightRepository
	analysisSvc AnalysisService
	snapchat    SnapchatClient
	queue       TaskEnqueuer
	logger      zerolog.Logger
	now         func() time.Time
}

func NewSyncService(userRepo repository.UserRepository, snapRepo repository.SnapchatRepository, insightRepo repository.InsightRepository, analysisSvc AnalysisService, snapchat SnapchatClient, queue TaskEnqueuer, logger zerolog.Logger) SyncService {
	return &syncService{
		userRepo:    userRepo,
		snapRepo:    snapRepo,
		insightRepo: insightRepo,
		analysisSvc: analysisSvc,
		snapchat:    snapchat,
		queue:       queue,
		logger:      logger.With().Str("service", "SyncService").Logger(),
		now:         time.Now,
	}
}

func (s *syncService) Sync(ctx context.Context, userID int64) error {
	account, err := s.snapRepo.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	if account == nil {
		s.logger.Info().Int64("user_id", userID).Msg("No linked Snapchat account; skipping sync")
		return nil
	}

	tok := &oauth2.Token{AccessToken: account.AccessToken, RefreshToken: account.RefreshToken, TokenType: "Bearer"}
	if account.TokenExpiresAt != nil {
		tok.Expiry = *account.TokenExpiresAt
	}
	fresh, err := s.snapchat.Refresh(ctx, tok)
	if err != nil {
		return err
	}
	if fresh.AccessToken != tok.AccessToken || fresh.RefreshToken != tok.RefreshToken {
		var exp *time.Time
		if !fresh.Expiry.IsZero() {
			e := fresh.Expiry
			exp = &e
		}
		refresh := fresh.RefreshToken
		if refresh == "" {
			refresh = tok.RefreshToken
		}
		if err := s.snapRepo.UpdateTokens(ctx, userID, fresh.AccessToken, refresh, exp); err != nil {
			return err
		}
		s.logger.Debug().Int64("user_id", userID).Msg("Snapchat token refreshed")
	}

	stats, err := s.snapchat.Stats(ctx, fresh)
	if err != nil {
		return err
	}
	if stats.DisplayName == "" {
		stats.DisplayName = account.DisplayName
	}

	previous, err := s.snapRepo.RecentSnapshots(ctx, userID, 1)
	if err != nil {
		return err
	}
	if _, err := s.snapRepo.SaveSnapshot(ctx, userID, *stats); err != nil {
		return err
	}

	var prev *model.SnapshotMetrics
	if len(previous) > 0 {
		prev = &previous[0].Data
	}
	for _, text := range analysis.DeriveInsights(prev, *stats) {
		if err := s.insightRepo.Create(ctx, userID, text); err != nil {
			return err
		}
	}
	if err := s.snapRepo.MarkSynced(ctx, userID, s.now()); err != nil {
		return err
	}

	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsPremium(s.now()) {
		if _, err := s.analysisSvc.Generate(ctx, userID); err != nil && !errors.Is(err, ErrEmptyCohort) {
			return err
		}
	}
	s.logger.Info().Int64("user_id", userID).Int64("followers", stats.Followers).Msg("Snapchat sync complete")
	return nil
}

func (s *syncService) FanOut(ctx context.Context, tier string) (int, error) {
	ids, err := s.userRepo.ListLinkedUserIDs(ctx, tier)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, id := range ids {
		if err := s.queue.Enqueue(ctx, model.Task{Type: model.TaskSync, UserID: id}); err != nil {
			return queued, err
		}
		queued++
	}
	s.logger.Info().Str("tier", tier).Int("queued", queued).Msg("Sync fan-out queued")
	return queued, nil
}
