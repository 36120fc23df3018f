package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ducksnap/internal/middleware"
	"ducksnap/internal/model"
	"ducksnap/internal/paypal"
	"ducksnap/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fakeAuth marks every request as user 1.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), 1)))
	})
}

func serve(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

type stubUsers struct {
	service.UserService
	registerErr error
	authErr     error
}

func (s *stubUsers) Register(_ context.Context, username, email, _ string) (*model.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &model.User{ID: 9, Username: username, Email: email, Subscription: model.TierFree}, nil
}

func (s *stubUsers) Authenticate(_ context.Context, username, _ string) (*model.User, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return &model.User{ID: 9, Username: username, Subscription: model.TierFree}, nil
}

func (s *stubUsers) Get(_ context.Context, id int64) (*model.User, error) {
	return &model.User{ID: id, Username: "duck", Email: "duck@example.com", Subscription: model.TierFree}, nil
}

func (s *stubUsers) UpdateEmail(_ context.Context, id int64, email string) (*model.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &model.User{ID: id, Email: email}, nil
}

func authMux(users service.UserService) *http.ServeMux {
	mux := http.NewServeMux()
	NewAuthHandler(users, validate, SessionConfig{Secret: "s", TTL: time.Hour}, zerolog.Nop()).RegisterRoutes(mux, fakeAuth)
	return mux
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	rec := serve(authMux(&stubUsers{}), http.MethodPost, "/auth/register", `{"username":"duck","email":"duck@example.com","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "duck", decode(t, rec)["username"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestRegisterValidationAndConflict(t *testing.T) {
	rec := serve(authMux(&stubUsers{}), http.MethodPost, "/auth/register", `{"username":"duck","email":"nope","password":"longenough"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email address", decode(t, rec)["error"])

	rec = serve(authMux(&stubUsers{}), http.MethodPost, "/auth/register", `{"username":"duck","email":"d@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(authMux(&stubUsers{registerErr: service.ErrUserExists}), http.MethodPost, "/auth/register", `{"username":"duck","email":"d@example.com","password":"longenough"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterMultiBytePasswordTooLong(t *testing.T) {
	pw := strings.Repeat("é", 40)
	rec := serve(authMux(&stubUsers{registerErr: service.ErrPasswordTooLong}), http.MethodPost, "/auth/register", `{"username":"duck","email":"d@example.com","password":"`+pw+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginFailure(t *testing.T) {
	rec := serve(authMux(&stubUsers{authErr: service.ErrInvalidCredentials}), http.MethodPost, "/auth/login", `{"username":"duck","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogoutClearsCookie(t *testing.T) {
	rec := serve(authMux(&stubUsers{}), http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

type stubSupport struct {
	created int
}

func (s *stubSupport) CreateTicket(_ context.Context, userID int64, subject, message string) (*service.TicketResult, error) {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(message) == "" {
		return nil, service.ErrMissingTicketFields
	}
	s.created++
	return &service.TicketResult{
		Ticket:  &model.SupportTicket{ID: 1, UserID: userID, Subject: subject, Message: message, Priority: model.PriorityNormal},
		Message: service.TicketReceivedFree,
	}, nil
}

func (s *stubSupport) ListTickets(context.Context, int64) ([]model.SupportTicket, error) {
	return nil, nil
}

func TestCreateTicketMissingFields(t *testing.T) {
	support := &stubSupport{}
	mux := http.NewServeMux()
	NewSupportHandler(support, service.NewContentService(), zerolog.Nop()).RegisterRoutes(mux, fakeAuth)

	rec := serve(mux, http.MethodPost, "/support/tickets", `{"subject":"  ","message":"help"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Missing Information", body["title"])
	assert.Equal(t, "Please fill in both subject and message fields", body["description"])
	assert.Zero(t, support.created)

	rec = serve(mux, http.MethodPost, "/support/tickets", `{"subject":"Sync","message":"stale"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, service.TicketReceivedFree, decode(t, rec)["message"])

	rec = serve(mux, http.MethodGet, "/support/tickets", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

type stubWebhooks struct {
	err error
}

func (s *stubWebhooks) ActivateSubscription(_ context.Context, subscriptionID, _ string) error {
	return s.err
}

func (s *stubWebhooks) HandleNotification(context.Context, http.Header, []byte) (*paypal.Event, bool, error) {
	return &paypal.Event{ID: "WH-1"}, false, s.err
}

func TestPayPalWebhook(t *testing.T) {
	mux := http.NewServeMux()
	NewPayPalHandler(&stubWebhooks{}, validate, zerolog.Nop()).RegisterRoutes(mux)

	rec := serve(mux, http.MethodPost, "/paypal/webhook", `{"subscriptionId":"I-1","payerId":"P-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Subscription activated successfully"}`, rec.Body.String())

	for _, body := range []string{`{"subscriptionId":"I-1"}`, `not json`, ``} {
		rec = serve(mux, http.MethodPost, "/paypal/webhook", body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, body)
		assert.JSONEq(t, `{"error":"Failed to process subscription"}`, rec.Body.String())
	}

	failing := http.NewServeMux()
	NewPayPalHandler(&stubWebhooks{err: errors.New("paypal down")}, validate, zerolog.Nop()).RegisterRoutes(failing)
	rec = serve(failing, http.MethodPost, "/paypal/webhook", `{"subscriptionId":"I-1","payerId":"P-1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPayPalEventsStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{service.ErrInvalidSignature, http.StatusUnauthorized},
		{service.ErrInvalidEvent, http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		mux := http.NewServeMux()
		NewPayPalHandler(&stubWebhooks{err: c.err}, validate, zerolog.Nop()).RegisterRoutes(mux)
		rec := serve(mux, http.MethodPost, "/paypal/events", `{}`)
		assert.Equal(t, c.want, rec.Code, "%v", c.err)
	}
}

type stubConnect struct {
	service.ConnectService
	syncErr     error
	completeErr error
}

func (s *stubConnect) StartLink(context.Context, int64) (string, error) {
	return "https://accounts.snapchat.test/authorize?state=abc", nil
}

func (s *stubConnect) CompleteLink(context.Context, string, string) (*model.SnapchatAccount, error) {
	return &model.SnapchatAccount{UserID: 1}, s.completeErr
}

func (s *stubConnect) RequestSync(context.Context, int64) error { return s.syncErr }

func (s *stubConnect) Status(context.Context, int64) (*service.ConnectionStatus, error) {
	return &service.ConnectionStatus{Connected: true, DisplayName: "Duck"}, nil
}

func connectMux(c *stubConnect) *http.ServeMux {
	mux := http.NewServeMux()
	NewConnectHandler(c, zerolog.Nop()).RegisterRoutes(mux, fakeAuth)
	return mux
}

func TestConnectRedirects(t *testing.T) {
	rec := serve(connectMux(&stubConnect{}), http.MethodGet, "/connect/snapchat", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.snapchat.test/authorize?state=abc", rec.Header().Get("Location"))

	rec = serve(connectMux(&stubConnect{}), http.MethodGet, "/connect/snapchat/callback?code=c&state=abc", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard?connected=1", rec.Header().Get("Location"))

	rec = serve(connectMux(&stubConnect{completeErr: service.ErrInvalidState}), http.MethodGet, "/connect/snapchat/callback?code=c&state=old", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncCooldown(t *testing.T) {
	rec := serve(connectMux(&stubConnect{}), http.MethodPost, "/connect/snapchat/sync", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = serve(connectMux(&stubConnect{syncErr: &service.CooldownError{Remaining: 90 * time.Second}}), http.MethodPost, "/connect/snapchat/sync", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "90", rec.Header().Get("Retry-After"))
}

type stubSubs struct {
	service.SubscriptionService
	res *service.UpgradeResult
	err error
}

func (s *stubSubs) Upgrade(context.Context, int64, string, string) (*service.UpgradeResult, error) {
	return s.res, s.err
}

func (s *stubSubs) GetStatus(context.Context, int64) (*service.SubscriptionStatus, error) {
	return &service.SubscriptionStatus{Plan: model.TierFree, Status: "none"}, nil
}

func TestSettings(t *testing.T) {
	run := func(users *stubUsers, method, body string) *httptest.ResponseRecorder {
		mux := http.NewServeMux()
		NewSettingsHandler(users, &stubSubs{}, &stubConnect{}, validate, zerolog.Nop()).RegisterRoutes(mux, fakeAuth)
		return serve(mux, method, "/settings", body)
	}

	rec := run(&stubUsers{}, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "duck", body["user"].(map[string]any)["username"])
	assert.Equal(t, "none", body["subscription"].(map[string]any)["status"])
	assert.Equal(t, true, body["connection"].(map[string]any)["connected"])

	assert.Equal(t, http.StatusOK, run(&stubUsers{}, http.MethodPatch, `{"email":"new@example.com"}`).Code)
	assert.Equal(t, http.StatusBadRequest, run(&stubUsers{}, http.MethodPatch, `{"email":"nope"}`).Code)
	assert.Equal(t, http.StatusConflict, run(&stubUsers{registerErr: service.ErrUserExists}, http.MethodPatch, `{"email":"taken@example.com"}`).Code)
}

func TestUpgradeResponses(t *testing.T) {
	run := func(s *stubSubs, body string) *httptest.ResponseRecorder {
		mux := http.NewServeMux()
		NewSubscriptionHandler(s, validate, zerolog.Nop()).RegisterRoutes(mux, fakeAuth)
		return serve(mux, http.MethodPost, "/subscription/upgrade", body)
	}

	rec := run(&stubSubs{res: &service.UpgradeResult{ApprovalURL: "https://paypal.test/approve", SubscriptionID: "I-1"}}, `{"plan":"premium"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "https://paypal.test/approve", decode(t, rec)["approvalUrl"])

	rec = run(&stubSubs{res: &service.UpgradeResult{Subscription: &service.SubscriptionStatus{Plan: "premium", IsPremium: true}}}, `{"plan":"premium","subscriptionId":"I-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["isPremium"])

	assert.Equal(t, http.StatusBadRequest, run(&stubSubs{err: service.ErrInvalidPlan}, `{"plan":"gold"}`).Code)
	assert.Equal(t, http.StatusConflict, run(&stubSubs{err: service.ErrAlreadyPremium}, `{"plan":"premium"}`).Code)
	assert.Equal(t, http.StatusBadRequest, run(&stubSubs{}, `{}`).Code)
}
