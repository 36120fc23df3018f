package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ducksnap/internal/metrics"
	"ducksnap/internal/paypal"

	"github.com/rs/zerolog"
)

const eventDedupTTL = 24 * time.Hour

// PayPalWebhookService handles PayPal's two notification paths: the client
// relayed approval callback and native event notifications.
type PayPalWebhookService struct {
	subSvc    SubscriptionService
	paypal    PayPalClient
	deduper   EventDeduper
	webhookID string
	logger    zerolog.Logger
}

// NewPayPalWebhookService returns a webhook service. Signature verification
// is skipped when webhookID is empty.
func NewPayPalWebhookService(subSvc SubscriptionService, pp PayPalClient, deduper EventDeduper, webhookID string, logger zerolog.Logger) *PayPalWebhookService {
	return &PayPalWebhookService{
		subSvc:    subSvc,
		paypal:    pp,
		deduper:   deduper,
		webhookID: webhookID,
		logger:    logger.With().Str("service", "PayPalWebhookService").Logger(),
	}
}

// ActivateSubscription handles the approval callback carrying a subscription and payer id.
func (s *PayPalWebhookService) ActivateSubscription(ctx context.Context, subscriptionID, payerID string) error {
	if subscriptionID == "" {
		return errors.New("subscriptionId is required")
	}
	userID, err := s.subSvc.ActivatePayPalSubscription(ctx, subscriptionID, payerID)
	if err != nil {
		s.logger.Error().Err(err).Str("paypal_subscription_id", subscriptionID).Msg("Failed to activate subscription from webhook")
		metrics.RecordWebhook("approval", "failed")
		return err
	}
	s.logger.Info().Int64("user_id", userID).Str("paypal_subscription_id", subscriptionID).Msg("Subscription activated from webhook")
	metrics.RecordWebhook("approval", "processed")
	return nil
}

// HandleNotification verifies, deduplicates and applies a native PayPal
// event. duplicate is true when the event id was already processed.
func (s *PayPalWebhookService) HandleNotification(ctx context.Context, header http.Header, body []byte) (ev *paypal.Event, duplicate bool, err error) {
	if s.webhookID != "" {
		ok, err := s.paypal.VerifyWebhookSignature(ctx, s.webhookID, header, body)
		if err != nil {
			return nil, false, fmt.Errorf("verify signature: %w", err)
		}
		if !ok {
			s.logger.Warn().Str("transmission_id", header.Get("PAYPAL-TRANSMISSION-ID")).Msg("Signature verification failed for PayPal webhook")
			metrics.RecordWebhook("unknown", "rejected")
			return nil, false, ErrInvalidSignature
		}
	}

	ev, err = paypal.ParseEvent(body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	s.logger.Info().Str("event_id", ev.ID).Str("event_type", ev.Type).Msg("PayPal webhook received")

	first, err := s.deduper.MarkEventProcessed(ctx, ev.ID, eventDedupTTL)
	if err != nil {
		return ev, false, err
	}
	if !first {
		s.logger.Info().Str("event_id", ev.ID).Msg("Duplicate PayPal event; skipping")
		metrics.RecordWebhook(ev.Type, "duplicate")
		return ev, true, nil
	}

	if err := s.subSvc.ApplyEvent(ctx, ev); err != nil {
		// Let PayPal's redelivery try again.
		if ferr := s.deduper.ForgetEvent(ctx, ev.ID); ferr != nil {
			s.logger.Error().Err(ferr).Str("event_id", ev.ID).Msg("Failed to clear event id after failure")
		}
		s.logger.Error().Err(err).Str("event_id", ev.ID).Str("event_type", ev.Type).Msg("Failed to apply PayPal event")
		metrics.RecordWebhook(ev.Type, "failed")
		return ev, false, err
	}
	metrics.RecordWebhook(ev.Type, "processed")
	return ev, false, nil
}
