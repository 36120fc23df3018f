package service

import (
	"context"
	"errors"
	"time"

	"ducksnap/internal/cache"
	"ducksnap/internal/model"
	"ducksnap/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	oauthStateTTL     = 10 * time.Minute
	freeSyncWindow    = 24 * time.Hour
	premiumSyncWindow = 15 * time.Minute
)

// ConnectionStatus describes the user's Snapchat link.
type ConnectionStatus struct {
	Connected    bool       `json:"connected"`
	ExternalID   string     `json:"externalId,omitempty"`
	DisplayName  string     `json:"displayName,omitempty"`
	AvatarURL    string     `json:"avatarUrl,omitempty"`
	LinkedAt     *time.Time `json:"linkedAt,omitempty"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

type ConnectService interface {
	// StartLink returns the Snapchat consent URL for a fresh state bound to userID.
	StartLink(ctx context.Context, userID int64) (string, error)
	// CompleteLink finishes the authorization-code flow and queues the first sync.
	CompleteLink(ctx context.Context, state, code string) (*model.SnapchatAccount, error)
	Status(ctx context.Context, userID int64) (*ConnectionStatus, error)
	Unlink(ctx context.Context, userID int64) error
	// RequestSync queues a manual sync unless the user's cooldown is running.
	RequestSync(ctx context.Context, userID int64) error
}

type connectService struct {
	userRepo  repository.UserRepository
	snapRepo  repository.SnapchatRepository
	snapchat  SnapchatClient
	states    OAuthStateStore
	cooldowns CooldownStore
	queue     TaskEnqueuer
	logger    zerolog.Logger
	now       func() time.Time
}

func NewConnectService(userRepo repository.UserRepository, snapRepo repository.SnapchatRepository, snapchat SnapchatClient, states OAuthStateStore, cooldowns CooldownStore, queue TaskEnqueuer, logger zerolog.Logger) ConnectService {
	return &connectService{
		userRepo:  userRepo,
		snapRepo:  snapRepo,
		snapchat:  snapchat,
		states:    states,
		cooldowns: cooldowns,
		queue:     queue,
		logger:    logger.With().Str("service", "ConnectService").Logger(),
		now:       time.Now,
	}
}

func (s *connectService) StartLink(ctx context.Context, userID int64) (string, error) {
	state := uuid.NewString()
	if err := s.states.SaveOAuthState(ctx, state, userID, oauthStateTTL); err != nil {
		return "", err
	}
	return s.snapchat.AuthCodeURL(state), nil
}

func (s *connectService) CompleteLink(ctx context.Context, state, code string) (*model.SnapchatAccount, error) {
	if state == "" || code == "" {
		return nil, ErrInvalidState
	}
	userID, err := s.states.ConsumeOAuthState(ctx, state)
	if errors.Is(err, cache.ErrStateNotFound) {
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, err
	}

	tok, err := s.snapchat.Exchange(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to exchange Snapchat authorization code")
		return nil, err
	}
	profile, err := s.snapchat.Profile(ctx, tok)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to fetch Snapchat profile")
		return nil, err
	}

	account := &model.SnapchatAccount{
		UserID:       userID,
		ExternalID:   profile.ExternalID,
		DisplayName:  profile.DisplayName,
		AvatarURL:    profile.AvatarURL,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry
		account.TokenExpiresAt = &exp
	}
	if err := s.snapRepo.UpsertAccount(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Str("external_id", profile.ExternalID).Msg("Snapchat account linked")

	if err := s.queue.Enqueue(ctx, model.Task{Type: model.TaskSync, UserID: userID}); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to queue initial sync; the scheduler will pick it up")
	}
	return account, nil
}

func (s *connectService) Status(ctx context.Context, userID int64) (*ConnectionStatus, error) {
	account, err := s.snapRepo.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return &ConnectionStatus{}, nil
	}
	linkedAt := account.LinkedAt
	return &ConnectionStatus{
		Connected:    true,
		ExternalID:   account.ExternalID,
		DisplayName:  account.DisplayName,
		AvatarURL:    account.AvatarURL,
		LinkedAt:     &linkedAt,
		LastSyncedAt: account.LastSyncedAt,
	}, nil
}

func (s *connectService) Unlink(ctx context.Context, userID int64) error {
	account, err := s.snapRepo.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotLinked
	}
	if err := s.snapRepo.DeleteAccount(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", userID).Msg("Snapchat account unlinked")
	return nil
}

func (s *connectService) RequestSync(ctx context.Context, userID int64) error {
	account, err := s.snapRepo.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotLinked
	}
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}

	window := freeSyncWindow
	if u.IsPremium(s.now()) {
		window = premiumSyncWindow
	}
	ok, left, err := s.cooldowns.AcquireSyncCooldown(ctx, userID, window)
	if err != nil {
		return err
	}
	if !ok {
		return &CooldownError{Remaining: left}
	}
	if err := s.queue.Enqueue(ctx, model.Task{Type: model.TaskSync, UserID: userID}); err != nil {
		if rerr := s.cooldowns.ReleaseSyncCooldown(ctx, userID); rerr != nil {
			s.logger.Error().Err(rerr).Int64("user_id", userID).Msg("Failed to release sync cooldown")
		}
		return err
	}
	s.logger.Info().Int64("user_id", userID).Msg("Manual sync queued")
	return nil
}
