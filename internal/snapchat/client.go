// Package snapchat wraps the Snapchat OAuth2 authorization-code flow and the
// creator profile and stats endpoints.
package snapchat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ducksnap/internal/model"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// Scopes requested during account linking.
var Scopes = []string{
	"https://auth.snapchat.com/oauth2/api/user.external_id",
	"https://auth.snapchat.com/oauth2/api/user.display_name",
	"https://auth.snapchat.com/oauth2/api/user.bitmoji.avatar",
}

const profileQuery = `{"query":"{me{externalId displayName bitmoji{avatar}}}"}`

// ErrUnauthorized means the stored token was rejected and the account must be relinked.
var ErrUnauthorized = errors.New("snapchat: token rejected")

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
}

// Profile identifies the linked Snapchat account.
type Profile struct {
	ExternalID  string
	DisplayName string
	AvatarURL   string
}

type Client struct {
	oauth   *oauth2.Config
	apiBase string
	base    *http.Client
}

// New builds a client. base is used for token and API calls and may be nil.
func New(cfg Config, base *http.Client) *Client {
	if base == nil {
		base = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		apiBase: strings.TrimRight(cfg.APIBaseURL, "/"),
		base:    base,
	}
}

func (c *Client) ctx(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.base)
}

// AuthCodeURL returns the consent page URL for state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.oauth.Exchange(c.ctx(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

// Refresh returns a valid token, refreshing tok if it has expired. The
// returned token differs from tok only when a refresh happened.
func (c *Client) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	fresh, err := c.oauth.TokenSource(c.ctx(ctx), tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return fresh, nil
}

// Profile fetches the linked user's identity.
func (c *Client) Profile(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	body, err := c.call(ctx, tok, http.MethodPost, "/v1/me", []byte(profileQuery))
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	me := gjson.GetBytes(body, "data.me")
	p := &Profile{
		ExternalID:  me.Get("externalId").String(),
		DisplayName: me.Get("displayName").String(),
		AvatarURL:   me.Get("bitmoji.avatar").String(),
	}
	if p.ExternalID == "" {
		return nil, errors.New("fetch profile: response has no externalId")
	}
	return p, nil
}

// Stats fetches the creator's current audience metrics.
func (c *Client) Stats(ctx context.Context, tok *oauth2.Token) (*model.SnapshotMetrics, error) {
	body, err := c.call(ctx, tok, http.MethodGet, "/v1/creator/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	return ParseStats(body)
}

// ParseStats decodes a stats payload. Both the enveloped ({"data": {...}})
// and bare forms are accepted.
func ParseStats(body []byte) (*model.SnapshotMetrics, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("snapchat: invalid stats json")
	}
	root := gjson.ParseBytes(body)
	if d := root.Get("data"); d.IsObject() {
		root = d
	}
	m := &model.SnapshotMetrics{
		DisplayName:      root.Get("display_name").String(),
		Followers:        root.Get("followers").Int(),
		Views:            root.Get("views").Int(),
		StoryViews:       root.Get("story_views").Int(),
		EngagementRate:   root.Get("engagement_rate").Float(),
		GrowthRate:       root.Get("growth_rate").Float(),
		ContentFrequency: root.Get("content_frequency").Float(),
		AudienceAge:      floatMap(root.Get("audience.age")),
		AudienceRegion:   floatMap(root.Get("audience.region")),
	}
	return m, nil
}

func floatMap(r gjson.Result) map[string]float64 {
	if !r.IsObject() {
		return nil
	}
	out := make(map[string]float64)
	r.ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v.Float()
		return true
	})
	return out
}

func (c *Client) call(ctx context.Context, tok *oauth2.Token, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := oauth2.NewClient(c.ctx(ctx), oauth2.StaticTokenSource(tok))
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("snapchat api %s: status %d", path, resp.StatusCode)
	}
	return data, nil
}
