package handler

import (
	"errors"
	"net/http"
	"time"

	"ducksnap/internal/api/v1/dto"
	"ducksnap/internal/middleware"
	"ducksnap/internal/service"
	"ducksnap/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SessionConfig controls the issued session cookie.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	userService service.UserService
	validate    *validator.Validate
	session     SessionConfig
	logger      zerolog.Logger
}

func NewAuthHandler(userService service.UserService, validate *validator.Validate, session SessionConfig, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		validate:    validate,
		session:     session,
		logger:      logger.With().Str("handler", "AuthHandler").Logger(),
	}
}

// RegisterRoutes mounts authentication routes
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/logout", h.logout)
	mux.Handle("GET /auth/me", authMw(http.HandlerFunc(h.me)))
}

// register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	u, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, service.ErrUserExists) {
		writeError(w, http.StatusConflict, "Username or email already registered")
		return
	}
	if errors.Is(err, service.ErrPasswordTooLong) {
		writeError(w, http.StatusBadRequest, "Password is too long")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to register user")
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	if err := h.setSession(w, u.ID); err != nil {
		h.logger.Error().Err(err).Int64("user_id", u.ID).Msg("Failed to issue session")
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewUserResponse(u))
}

// login godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	u, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to authenticate user")
		writeError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	if err := h.setSession(w, u.ID); err != nil {
		h.logger.Error().Err(err).Int64("user_id", u.ID).Msg("Failed to issue session")
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(u))
}

// logout godoc
// @Summary Sign out
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	u, err := h.userService.Get(r.Context(), userID)
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(u))
}

func (h *AuthHandler) setSession(w http.ResponseWriter, userID int64) error {
	token, err := util.IssueJWT(userID, h.session.Secret, h.session.TTL, time.Now())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
