package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v83"

	"github.com/investflow/investflow/app/repository"
	"github.com/investflow/investflow/internal/pkg/payments"
)

const webhookTimeout = 15 * time.Second

// WebhookController receives signed Stripe events and hands them to the
// payments service.
type WebhookController struct {
	svc    *payments.Service
	events repository.WebhookEventRepository
	secret string
}

// NewWebhookController creates a webhook controller.
func NewWebhookController(svc *payments.Service, events repository.WebhookEventRepository, secret string) *WebhookController {
	return &WebhookController{svc: svc, events: events, secret: secret}
}

// HandleStripeWebhook processes one inbound Stripe event.
// POST /api/webhooks/stripe
//
// The route must see the exact raw request bytes: signature verification runs
// over the unparsed body and strictly before any payload parsing. Once the
// signature checks out the response is always 200 - Stripe retries on
// non-2xx, and a retry cannot fix a failed handler whose event is already in
// the ledger.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	sig := c.Get("Stripe-Signature")
	if sig == "" {
		log.Error("[Webhook] Missing stripe-signature header")
		return c.Status(fiber.StatusBadRequest).SendString("Missing stripe-signature header")
	}

	event, err := stripe.ConstructEvent(rawBody, sig, wc.secret)
	if err != nil {
		log.Errorf("[Webhook] Signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: " + err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	created, stored, err := wc.svc.RecordEvent(ctx, &event, rawBody)
	if err != nil {
		// Authenticity is established; acknowledge and leave recovery to the
		// operator rather than triggering a provider retry storm.
		log.Errorf("[Webhook] Failed to record event %s: %v", event.ID, err)
		return c.JSON(fiber.Map{"received": true, "error": err.Error()})
	}
	if !created {
		log.Infof("[Webhook] Duplicate delivery of event %s, skipping", event.ID)
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	dispatchErr := wc.svc.Dispatch(ctx, &event)
	if err := wc.svc.MarkProcessed(ctx, stored.ID, dispatchErr); err != nil {
		log.Errorf("[Webhook] Failed to mark event %s processed: %v", event.ID, err)
	}
	if dispatchErr != nil {
		log.Errorf("[Webhook] Error processing event %s: %v", event.ID, dispatchErr)
		return c.JSON(fiber.Map{"received": true, "error": dispatchErr.Error()})
	}

	return c.JSON(fiber.Map{"received": true})
}

// HandleListFailedEvents returns recent dead-letter ledger rows so operators
// can inspect and replay failed events.
// GET /api/webhooks/events/failed
func (wc *WebhookController) HandleListFailedEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	events, err := wc.events.ListFailed(limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"events": events,
			"count":  len(events),
		},
	})
}
