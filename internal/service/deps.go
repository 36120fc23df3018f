package service

import (
	"context"
	"net/http"
	"time"

	"ducksnap/internal/model"
	"ducksnap/internal/paypal"
	"ducksnap/internal/snapchat"

	"golang.org/x/oauth2"
)

// PayPalClient is the subset of the PayPal API the billing services call.
type PayPalClient interface {
	GetSubscription(ctx context.Context, id string) (*paypal.Subscription, error)
	CreateSubscription(ctx context.Context, req paypal.CreateSubscriptionRequest) (*paypal.Subscription, error)
	CancelSubscription(ctx context.Context, id, reason string) error
	VerifyWebhookSignature(ctx context.Context, webhookID string, header http.Header, event []byte) (bool, error)
}

// SnapchatClient is the subset of the Snapchat API used for linking and syncing.
type SnapchatClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)
	Profile(ctx context.Context, tok *oauth2.Token) (*snapchat.Profile, error)
	Stats(ctx context.Context, tok *oauth2.Token) (*model.SnapshotMetrics, error)
}

// TaskEnqueuer queues background work for the worker.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task model.Task) error
}

// OAuthStateStore binds OAuth2 state values to users.
type OAuthStateStore interface {
	SaveOAuthState(ctx context.Context, state string, userID int64, ttl time.Duration) error
	ConsumeOAuthState(ctx context.Context, state string) (int64, error)
}

// EventDeduper remembers processed webhook event ids.
type EventDeduper interface {
	MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	ForgetEvent(ctx context.Context, eventID string) error
}

// CooldownStore limits how often a user can request a manual sync.
type CooldownStore interface {
	AcquireSyncCooldown(ctx context.Context, userID int64, window time.Duration) (bool, time.Duration, error)
	ReleaseSyncCooldown(ctx context.Context, userID int64) error
}

// ExportStorage stores report exports and issues download links.
type ExportStorage interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
