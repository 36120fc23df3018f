package service

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"time"

	"ducksnap/internal/cache"
	"ducksnap/internal/model"
	"ducksnap/internal/paypal"
	"ducksnap/internal/repository"
	"ducksnap/internal/snapchat"

	"golang.org/x/oauth2"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeUserRepo struct {
	users  map[int64]*model.User
	linked map[string][]int64
	nextID int64
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int64]*model.User{}, linked: map[string][]int64{}}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrConflict
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateEmail(_ context.Context, id int64, email string) error {
	for _, u := range r.users {
		if u.ID != id && u.Email == email {
			return repository.ErrConflict
		}
	}
	if u := r.users[id]; u != nil {
		u.Email = email
	}
	return nil
}

func (r *fakeUserRepo) SetTier(_ context.Context, id int64, tier string, expiresAt *time.Time) error {
	if u := r.users[id]; u != nil {
		u.Subscription = tier
		u.SubscriptionExpiresAt = expiresAt
	}
	return nil
}

func (r *fakeUserRepo) ListLapsedPremium(_ context.Context, now time.Time) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Subscription == model.TierPremium && u.SubscriptionExpiresAt != nil && u.SubscriptionExpiresAt.Before(now) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) ListLinkedUserIDs(_ context.Context, tier string) ([]int64, error) {
	return r.linked[tier], nil
}

// fakeSubRepo mirrors the transactional effects of the real repository on users.
type fakeSubRepo struct {
	users *fakeUserRepo
	subs  map[int64]*model.Subscription
	plans map[string]*model.SubscriptionPlan
}

func newFakeSubRepo(users *fakeUserRepo) *fakeSubRepo {
	return &fakeSubRepo{
		users: users,
		subs:  map[int64]*model.Subscription{},
		plans: map[string]*model.SubscriptionPlan{
			"free":            {ID: "free", Name: "Free", Tier: model.TierFree, BillingPeriod: "monthly"},
			"premium_monthly": {ID: "premium_monthly", Name: "Premium Monthly", Tier: model.TierPremium, BillingPeriod: "monthly"},
			"premium_yearly":  {ID: "premium_yearly", Name: "Premium Yearly", Tier: model.TierPremium, BillingPeriod: "yearly"},
		},
	}
}

func (r *fakeSubRepo) GetByUserID(_ context.Context, userID int64) (*model.Subscription, error) {
	return r.subs[userID], nil
}

func (r *fakeSubRepo) GetByPayPalID(_ context.Context, id string) (*model.Subscription, error) {
	for _, s := range r.subs {
		if s.PayPalSubscriptionID != nil && *s.PayPalSubscriptionID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubRepo) UpsertPending(_ context.Context, userID int64, planID, ppID string) error {
	r.subs[userID] = &model.Subscription{UserID: userID, PlanID: planID, Status: model.SubscriptionPending, PayPalSubscriptionID: &ppID}
	return nil
}

func (r *fakeSubRepo) Activate(ctx context.Context, userID int64, planID, ppID, payerID string, renewsAt time.Time) error {
	r.subs[userID] = &model.Subscription{
		UserID:               userID,
		PlanID:               planID,
		Status:               model.SubscriptionActive,
		PayPalSubscriptionID: &ppID,
		PayPalPayerID:        &payerID,
		RenewsAt:             &renewsAt,
	}
	return r.users.SetTier(ctx, userID, model.TierPremium, &renewsAt)
}

func (r *fakeSubRepo) Cancel(_ context.Context, userID int64, at time.Time) error {
	if s := r.subs[userID]; s != nil {
		s.Status = model.SubscriptionCancelled
		s.CancelledAt = &at
	}
	return nil
}

func (r *fakeSubRepo) Expire(ctx context.Context, userID int64, status string) error {
	if s := r.subs[userID]; s != nil {
		s.Status = status
	}
	return r.users.SetTier(ctx, userID, model.TierFree, nil)
}

func (r *fakeSubRepo) ExtendRenewal(ctx context.Context, ppID string, renewsAt time.Time) error {
	s, _ := r.GetByPayPalID(ctx, ppID)
	if s == nil {
		return sql.ErrNoRows
	}
	s.RenewsAt = &renewsAt
	if s.Status == model.SubscriptionExpired || s.Status == model.SubscriptionSuspended {
		s.Status = model.SubscriptionActive
		s.CancelledAt = nil
	}
	return r.users.SetTier(ctx, s.UserID, model.TierPremium, &renewsAt)
}

func (r *fakeSubRepo) ListPlans(context.Context) ([]model.SubscriptionPlan, error) {
	var out []model.SubscriptionPlan
	for _, p := range r.plans {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSubRepo) GetPlan(_ context.Context, id string) (*model.SubscriptionPlan, error) {
	return r.plans[id], nil
}

type fakePayPal struct {
	subs      map[string]*paypal.Subscription
	created   []paypal.CreateSubscriptionRequest
	cancelled []string
	verified  bool
	verifyErr error
}

func newFakePayPal() *fakePayPal {
	return &fakePayPal{subs: map[string]*paypal.Subscription{}, verified: true}
}

func (p *fakePayPal) GetSubscription(_ context.Context, id string) (*paypal.Subscription, error) {
	s, ok := p.subs[id]
	if !ok {
		return nil, paypal.ErrNotFound
	}
	return s, nil
}

func (p *fakePayPal) CreateSubscription(_ context.Context, req paypal.CreateSubscriptionRequest) (*paypal.Subscription, error) {
	p.created = append(p.created, req)
	return &paypal.Subscription{
		ID:     "I-NEW",
		Status: paypal.StatusApprovalPending,
		Links:  []paypal.Link{{Href: "https://paypal.test/approve/I-NEW", Rel: "approve", Method: "GET"}},
	}, nil
}

func (p *fakePayPal) CancelSubscription(_ context.Context, id, _ string) error {
	p.cancelled = append(p.cancelled, id)
	return nil
}

func (p *fakePayPal) VerifyWebhookSignature(context.Context, string, http.Header, []byte) (bool, error) {
	return p.verified, p.verifyErr
}

type fakeDeduper struct {
	seen      map[string]bool
	forgotten []string
}

func (d *fakeDeduper) MarkEventProcessed(_ context.Context, id string, _ time.Duration) (bool, error) {
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func (d *fakeDeduper) ForgetEvent(_ context.Context, id string) error {
	delete(d.seen, id)
	d.forgotten = append(d.forgotten, id)
	return nil
}

type fakeSnapRepo struct {
	accounts  map[int64]*model.SnapchatAccount
	snapshots map[int64][]model.SnapchatSnapshot
	nextID    int64
}

func newFakeSnapRepo() *fakeSnapRepo {
	return &fakeSnapRepo{accounts: map[int64]*model.SnapchatAccount{}, snapshots: map[int64][]model.SnapchatSnapshot{}}
}

func (r *fakeSnapRepo) UpsertAccount(_ context.Context, a *model.SnapchatAccount) error {
	a.LinkedAt = fixedNow
	r.accounts[a.UserID] = a
	return nil
}

func (r *fakeSnapRepo) GetAccount(_ context.Context, userID int64) (*model.SnapchatAccount, error) {
	return r.accounts[userID], nil
}

func (r *fakeSnapRepo) DeleteAccount(_ context.Context, userID int64) error {
	delete(r.accounts, userID)
	return nil
}

func (r *fakeSnapRepo) UpdateTokens(_ context.Context, userID int64, access, refresh string, exp *time.Time) error {
	if a := r.accounts[userID]; a != nil {
		a.AccessToken, a.RefreshToken, a.TokenExpiresAt = access, refresh, exp
	}
	return nil
}

func (r *fakeSnapRepo) MarkSynced(_ context.Context, userID int64, at time.Time) error {
	if a := r.accounts[userID]; a != nil {
		a.LastSyncedAt = &at
	}
	return nil
}

func (r *fakeSnapRepo) SaveSnapshot(_ context.Context, userID int64, data model.SnapshotMetrics) (*model.SnapchatSnapshot, error) {
	r.nextID++
	sn := model.SnapchatSnapshot{ID: r.nextID, UserID: userID, Data: data, FetchedAt: fixedNow}
	r.snapshots[userID] = append(r.snapshots[userID], sn)
	return &sn, nil
}

func (r *fakeSnapRepo) add(userID int64, fetchedAt time.Time, data model.SnapshotMetrics) {
	r.nextID++
	r.snapshots[userID] = append(r.snapshots[userID], model.SnapchatSnapshot{ID: r.nextID, UserID: userID, Data: data, FetchedAt: fetchedAt})
}

func (r *fakeSnapRepo) RecentSnapshots(_ context.Context, userID int64, limit uint64) ([]model.SnapchatSnapshot, error) {
	all := r.snapshots[userID]
	var out []model.SnapchatSnapshot
	for i := len(all) - 1; i >= 0 && uint64(len(out)) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *fakeSnapRepo) SnapshotsSince(_ context.Context, userID int64, since time.Time) ([]model.SnapchatSnapshot, error) {
	var out []model.SnapchatSnapshot
	for _, sn := range r.snapshots[userID] {
		if !sn.FetchedAt.Before(since) {
			out = append(out, sn)
		}
	}
	return out, nil
}

func (r *fakeSnapRepo) LatestSnapshotsExcept(_ context.Context, userID int64) ([]model.SnapchatSnapshot, error) {
	var ids []int64
	for id := range r.snapshots {
		if id != userID && r.accounts[id] != nil && len(r.snapshots[id]) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []model.SnapchatSnapshot
	for _, id := range ids {
		all := r.snapshots[id]
		out = append(out, all[len(all)-1])
	}
	return out, nil
}

type fakeAnalysisRepo struct {
	stored []*model.CompetitorAnalysis
}

func (r *fakeAnalysisRepo) Create(_ context.Context, a *model.CompetitorAnalysis) error {
	a.ID = int64(len(r.stored) + 1)
	r.stored = append(r.stored, a)
	return nil
}

func (r *fakeAnalysisRepo) GetLatest(_ context.Context, userID int64) (*model.CompetitorAnalysis, error) {
	for i := len(r.stored) - 1; i >= 0; i-- {
		if r.stored[i].UserID == userID {
			return r.stored[i], nil
		}
	}
	return nil, nil
}

type fakeInsightRepo struct {
	insights []model.Insight
}

func (r *fakeInsightRepo) Create(_ context.Context, userID int64, text string) error {
	r.insights = append(r.insights, model.Insight{ID: int64(len(r.insights) + 1), UserID: userID, Insight: text, CreatedAt: fixedNow})
	return nil
}

func (r *fakeInsightRepo) ListRecent(_ context.Context, userID int64, limit uint64) ([]model.Insight, error) {
	var out []model.Insight
	for i := len(r.insights) - 1; i >= 0 && uint64(len(out)) < limit; i-- {
		if r.insights[i].UserID == userID {
			out = append(out, r.insights[i])
		}
	}
	return out, nil
}

type fakeTicketRepo struct {
	tickets []model.SupportTicket
}

func (r *fakeTicketRepo) Create(_ context.Context, t *model.SupportTicket) error {
	t.ID = int64(len(r.tickets) + 1)
	r.tickets = append(r.tickets, *t)
	return nil
}

func (r *fakeTicketRepo) ListByUser(_ context.Context, userID int64) ([]model.SupportTicket, error) {
	var out []model.SupportTicket
	for _, t := range r.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeQueue struct {
	tasks []model.Task
	err   error
}

func (q *fakeQueue) Enqueue(_ context.Context, t model.Task) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, t)
	return nil
}

type fakeStates struct {
	states map[string]int64
}

func (s *fakeStates) SaveOAuthState(_ context.Context, state string, userID int64, _ time.Duration) error {
	if s.states == nil {
		s.states = map[string]int64{}
	}
	s.states[state] = userID
	return nil
}

func (s *fakeStates) ConsumeOAuthState(_ context.Context, state string) (int64, error) {
	id, ok := s.states[state]
	if !ok {
		return 0, cache.ErrStateNotFound
	}
	delete(s.states, state)
	return id, nil
}

type fakeCooldowns struct {
	held     map[int64]time.Duration
	released []int64
}

func (c *fakeCooldowns) AcquireSyncCooldown(_ context.Context, userID int64, window time.Duration) (bool, time.Duration, error) {
	if c.held == nil {
		c.held = map[int64]time.Duration{}
	}
	if left, ok := c.held[userID]; ok {
		return false, left, nil
	}
	c.held[userID] = window
	return true, 0, nil
}

func (c *fakeCooldowns) ReleaseSyncCooldown(_ context.Context, userID int64) error {
	delete(c.held, userID)
	c.released = append(c.released, userID)
	return nil
}

type fakeSnapchat struct {
	token     *oauth2.Token
	refreshed *oauth2.Token
	profile   *snapchat.Profile
	stats     *model.SnapshotMetrics
}

func (c *fakeSnapchat) AuthCodeURL(state string) string {
	return "https://accounts.snapchat.test/authorize?state=" + state
}

func (c *fakeSnapchat) Exchange(context.Context, string) (*oauth2.Token, error) { return c.token, nil }

func (c *fakeSnapchat) Refresh(_ context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if c.refreshed != nil {
		return c.refreshed, nil
	}
	return tok, nil
}

func (c *fakeSnapchat) Profile(context.Context, *oauth2.Token) (*snapchat.Profile, error) {
	return c.profile, nil
}

func (c *fakeSnapchat) Stats(context.Context, *oauth2.Token) (*model.SnapshotMetrics, error) {
	if c.stats == nil {
		return nil, snapchat.ErrUnauthorized
	}
	cp := *c.stats
	return &cp, nil
}

type fakeStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func (s *fakeStorage) Put(_ context.Context, key, contentType string, body []byte) error {
	if s.objects == nil {
		s.objects = map[string][]byte{}
		s.types = map[string]string{}
	}
	s.objects[key] = body
	s.types[key] = contentType
	return nil
}

func (s *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://exports.test/" + key + "?sig=abc", nil
}

func premiumUser(id int64, until time.Time) *model.User {
	return &model.User{ID: id, Username: "premium", Email: "p@example.com", Subscription: model.TierPremium, SubscriptionExpiresAt: &until}
}

func freeUser(id int64) *model.User {
	return &model.User{ID: id, Username: "free", Email: "f@example.com", Subscription: model.TierFree}
}
