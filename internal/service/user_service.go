package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ducksnap/internal/model"
	"ducksnap/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) (*model.User, error)
	// IsPremium reports whether the user's premium tier is currently in force.
	IsPremium(ctx context.Context, id int64) (bool, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "UserService").Logger(),
		now:      time.Now,
	}
}

// maxPasswordBytes is the bcrypt input limit. Validation tags count runes, so
// multi-byte passwords are checked here.
const maxPasswordBytes = 72

func (s *userService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Subscription: model.TierFree,
	}
	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserExists
		}
		s.logger.Error().Err(err).Str("username", u.Username).Msg("Failed to create user")
		return nil, err
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("User registered")
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.userRepo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) UpdateEmail(ctx context.Context, id int64, email string) (*model.User, error) {
	if err := s.userRepo.UpdateEmail(ctx, id, strings.ToLower(strings.TrimSpace(email))); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *userService) IsPremium(ctx context.Context, id int64) (bool, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsPremium(s.now()), nil
}
