package dto

import (
	"ducksnap/internal/model"

	"github.com/shopspring/decimal"
)

// UpgradeRequest starts or completes a premium upgrade. SubscriptionID is set
// when the client already approved the subscription in PayPal.
type UpgradeRequest struct {
	Plan           string `json:"plan" validate:"required"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
}

// CheckoutResponse points the client at PayPal's approval page.
type CheckoutResponse struct {
	ApprovalURL    string `json:"approvalUrl"`
	SubscriptionID string `json:"subscriptionId"`
}

// PayPalWebhookRequest is the approval callback relayed by the client.
type PayPalWebhookRequest struct {
	SubscriptionID string `json:"subscriptionId" validate:"required"`
	PayerID        string `json:"payerId" validate:"required"`
}

// WebhookResponse acknowledges a processed webhook.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PlanResponse is a purchasable plan with its price as a decimal string.
type PlanResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Tier          string          `json:"tier"`
	BillingPeriod string          `json:"billingPeriod"`
	Price         decimal.Decimal `json:"price" swaggertype:"string" example:"19.99"`
	Currency      string          `json:"currency"`
	Features      []string        `json:"features"`
}

func NewPlanResponse(p model.SubscriptionPlan) PlanResponse {
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}
	return PlanResponse{
		ID:            p.ID,
		Name:          p.Name,
		Tier:          p.Tier,
		BillingPeriod: p.BillingPeriod,
		Price:         p.Price.Round(2),
		Currency:      p.Currency,
		Features:      features,
	}
}
