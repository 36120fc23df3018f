package model

import "time"

// SnapchatAccount is a linked Snapchat identity with its OAuth2 tokens.
type SnapchatAccount struct {
	UserID         int64      `db:"user_id" json:"userId"`
	ExternalID     string     `db:"external_id" json:"externalId"`
	DisplayName    string     `db:"display_name" json:"displayName"`
	AvatarURL      string     `db:"avatar_url" json:"avatarUrl"`
	AccessToken    string     `db:"access_token" json:"-"`
	RefreshToken   string     `db:"refresh_token" json:"-"`
	TokenExpiresAt *time.Time `db:"token_expires_at" json:"-"`
	LinkedAt       time.Time  `db:"linked_at" json:"linkedAt"`
	LastSyncedAt   *time.Time `db:"last_synced_at" json:"lastSyncedAt"`
}

// SnapshotMetrics is the metric payload stored in snapchat_data.data.
type SnapshotMetrics struct {
	DisplayName      string  `json:"displayName"`
	Followers        int64   `json:"followers"`
	Views            int64   `json:"views"`
	StoryViews       int64   `json:"storyViews"`
	EngagementRate   float64 `json:"engagementRate"`
	GrowthRate       float64 `json:"growthRate"`
	ContentFrequency float64 `json:"contentFrequency"`
	// AudienceAge and AudienceRegion hold share-of-audience fractions keyed by bucket.
	AudienceAge    map[string]float64 `json:"audienceAge,omitempty"`
	AudienceRegion map[string]float64 `json:"audienceRegion,omitempty"`
}

// SnapchatSnapshot is one synced metric snapshot.
type SnapchatSnapshot struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Data      SnapshotMetrics `json:"data"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Insight is a generated observation about a creator's metrics.
type Insight struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Insight   string    `db:"insight" json:"insight"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
