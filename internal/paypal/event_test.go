package paypal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubscriptionEvent(t *testing.T) {
	body := []byte(`{"id":"WH-1","event_type":"BILLING.SUBSCRIPTION.ACTIVATED",
		"resource":{"id":"I-1","custom_id":"5","subscriber":{"payer_id":"PAY"},
		"billing_info":{"next_billing_time":"2026-12-01T00:00:00Z"}}}`)

	ev, err := ParseEvent(body)
	require.NoError(t, err)
	assert.Equal(t, EventSubscriptionActivated, ev.Type)
	assert.Equal(t, "I-1", ev.SubscriptionID)
	assert.Equal(t, "5", ev.CustomID)
	assert.Equal(t, "PAY", ev.PayerID)
	assert.Equal(t, 12, int(ev.NextBillingTime.Month()))
}

func TestParseSaleEventUsesBillingAgreement(t *testing.T) {
	body := []byte(`{"id":"WH-2","event_type":"PAYMENT.SALE.COMPLETED",
		"resource":{"id":"SALE-1","billing_agreement_id":"I-7"}}`)

	ev, err := ParseEvent(body)
	require.NoError(t, err)
	assert.Equal(t, "I-7", ev.SubscriptionID)
	assert.True(t, ev.NextBillingTime.IsZero())
}

func TestParseEventRejectsGarbage(t *testing.T) {
	_, err := ParseEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseEvent([]byte(`{"resource":{}}`))
	assert.Error(t, err)
}
