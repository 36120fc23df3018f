package paypal

import (
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

// Webhook event types the service reacts to.
const (
	EventSubscriptionActivated   = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventSubscriptionReactivated = "BILLING.SUBSCRIPTION.RE-ACTIVATED"
	EventSubscriptionCancelled   = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionSuspended   = "BILLING.SUBSCRIPTION.SUSPENDED"
	EventSubscriptionExpired     = "BILLING.SUBSCRIPTION.EXPIRED"
	EventPaymentSaleCompleted    = "PAYMENT.SALE.COMPLETED"
)

// Event is a decoded webhook notification.
type Event struct {
	ID             string
	Type           string
	SubscriptionID string
	CustomID       string
	PayerID        string
	// NextBillingTime is zero when the event does not carry one.
	NextBillingTime time.Time
}

// ParseEvent extracts the fields the service needs from a raw notification.
// Subscription events carry the subscription as the resource; sale events
// reference it through billing_agreement_id.
func ParseEvent(body []byte) (*Event, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("paypal: invalid event json")
	}
	root := gjson.ParseBytes(body)
	ev := &Event{
		ID:       root.Get("id").String(),
		Type:     root.Get("event_type").String(),
		CustomID: root.Get("resource.custom_id").String(),
		PayerID:  root.Get("resource.subscriber.payer_id").String(),
	}
	if ev.ID == "" || ev.Type == "" {
		return nil, errors.New("paypal: event missing id or event_type")
	}

	if ev.Type == EventPaymentSaleCompleted {
		ev.SubscriptionID = root.Get("resource.billing_agreement_id").String()
	} else {
		ev.SubscriptionID = root.Get("resource.id").String()
	}
	if t := root.Get("resource.billing_info.next_billing_time"); t.Exists() {
		if parsed, err := time.Parse(time.RFC3339, t.String()); err == nil {
			ev.NextBillingTime = parsed
		}
	}
	return ev, nil
}
