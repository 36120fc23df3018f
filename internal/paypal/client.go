// Package paypal is a small client for the PayPal Subscriptions and
// Notifications REST APIs.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Subscription statuses reported by PayPal.
const (
	StatusApprovalPending = "APPROVAL_PENDING"
	StatusApproved        = "APPROVED"
	StatusActive          = "ACTIVE"
	StatusSuspended       = "SUSPENDED"
	StatusCancelled       = "CANCELLED"
	StatusExpired         = "EXPIRED"
)

// ErrNotFound is returned when PayPal does not know the requested resource.
var ErrNotFound = errors.New("paypal: resource not found")

// APIError is a non-2xx response from PayPal.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal: %d %s: %s", e.StatusCode, e.Name, e.Message)
}

// Subscription is the subset of a PayPal billing subscription the service reads.
type Subscription struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	PlanID      string `json:"plan_id"`
	CustomID    string `json:"custom_id"`
	Subscriber  struct {
		PayerID      string `json:"payer_id"`
		EmailAddress string `json:"email_address"`
	} `json:"subscriber"`
	BillingInfo struct {
		NextBillingTime *time.Time `json:"next_billing_time"`
	} `json:"billing_info"`
	Links []Link `json:"links"`
}

// Link is a HATEOAS link.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// ApprovalURL returns the buyer approval link, if present.
func (s *Subscription) ApprovalURL() string {
	for _, l := range s.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

// Client talks to the PayPal REST API with client-credentials tokens.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for baseURL (sandbox or live). base may be nil.
func NewClient(baseURL, clientID, clientSecret string, base *http.Client) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if base == nil {
		base = &http.Client{Timeout: 15 * time.Second}
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := cc.Client(ctx)
	httpClient.Timeout = base.Timeout
	return &Client{baseURL: baseURL, http: httpClient}
}

// GetSubscription fetches a subscription by id.
func (c *Client) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodGet, "/v1/billing/subscriptions/"+url.PathEscape(id), nil, &sub); err != nil {
		return nil, fmt.Errorf("get subscription %s: %w", id, err)
	}
	return &sub, nil
}

// CreateSubscriptionRequest describes a new subscription awaiting buyer approval.
type CreateSubscriptionRequest struct {
	PlanID    string
	CustomID  string
	ReturnURL string
	CancelURL string
}

// CreateSubscription creates a subscription in APPROVAL_PENDING state.
func (c *Client) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	body := map[string]any{
		"plan_id":   req.PlanID,
		"custom_id": req.CustomID,
		"application_context": map[string]any{
			"brand_name":  "DuckShots SnapAlytics",
			"user_action": "SUBSCRIBE_NOW",
			"return_url":  req.ReturnURL,
			"cancel_url":  req.CancelURL,
		},
	}
	var sub Subscription
	if err := c.do(ctx, http.MethodPost, "/v1/billing/subscriptions", body, &sub); err != nil {
		return nil, fmt.Errorf("create subscription for plan %s: %w", req.PlanID, err)
	}
	return &sub, nil
}

// CancelSubscription cancels a subscription with the given reason.
func (c *Client) CancelSubscription(ctx context.Context, id, reason string) error {
	body := map[string]string{"reason": reason}
	if err := c.do(ctx, http.MethodPost, "/v1/billing/subscriptions/"+url.PathEscape(id)+"/cancel", body, nil); err != nil {
		return fmt.Errorf("cancel subscription %s: %w", id, err)
	}
	return nil
}

// VerifyWebhookSignature asks PayPal whether an event notification is authentic.
func (c *Client) VerifyWebhookSignature(ctx context.Context, webhookID string, header http.Header, event []byte) (bool, error) {
	body := map[string]any{
		"auth_algo":         header.Get("PAYPAL-AUTH-ALGO"),
		"cert_url":          header.Get("PAYPAL-CERT-URL"),
		"transmission_id":   header.Get("PAYPAL-TRANSMISSION-ID"),
		"transmission_sig":  header.Get("PAYPAL-TRANSMISSION-SIG"),
		"transmission_time": header.Get("PAYPAL-TRANSMISSION-TIME"),
		"webhook_id":        webhookID,
		"webhook_event":     json.RawMessage(event),
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", body, &raw); err != nil {
		return false, fmt.Errorf("verify webhook signature: %w", err)
	}
	return gjson.GetBytes(raw, "verification_status").String() == "SUCCESS", nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Name:       gjson.GetBytes(payload, "name").String(),
			Message:    gjson.GetBytes(payload, "message").String(),
		}
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
