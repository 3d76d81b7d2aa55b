package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v83"
	"gorm.io/gorm"

	"github.com/investflow/investflow/app/models"
)

// Service applies verified Stripe events onto local user, investment and
// project records. All handlers are idempotent for a given provider event id;
// the webhook ledger short-circuits replays before a handler ever runs, and
// each handler additionally guards against re-applying its own effect.
type Service struct {
	repo Repository
}

// NewService creates a payments service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a payments service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordEvent persists the raw event in the webhook ledger. The returned bool
// is false when the event id was already recorded (duplicate delivery).
func (s *Service) RecordEvent(ctx context.Context, event *stripe.Event, payload []byte) (bool, *models.WebhookEvent, error) {
	row := &models.WebhookEvent{
		Provider:        ProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(payload),
	}
	return s.repo.CreateWebhookEventIfNotExists(ctx, row)
}

// MarkProcessed marks a ledger row as processed and stores an optional error.
// Rows holding an error form the dead-letter log for operator replay.
func (s *Service) MarkProcessed(ctx context.Context, eventID uint, processingErr error) error {
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, eventID, errMsg)
}

// Dispatch routes a verified event to exactly one handler. Unknown event
// types are logged and acknowledged, never treated as errors.
func (s *Service) Dispatch(ctx context.Context, event *stripe.Event) error {
	log.Infof("[Payments] Processing webhook event %s (%s)", event.ID, event.Type)

	switch event.Type {
	case "checkout.session.completed":
		// Session completed, subscription may not be active yet.
		log.Info("[Payments] Checkout session completed")
		return nil

	case "customer.subscription.created", "customer.subscription.updated":
		sub, err := unmarshalSubscription(event)
		if err != nil {
			return err
		}
		return s.HandleSubscriptionSuccess(ctx, sub)

	case "customer.subscription.deleted":
		sub, err := unmarshalSubscription(event)
		if err != nil {
			return err
		}
		return s.HandleSubscriptionCanceled(ctx, sub)

	case "payment_intent.succeeded":
		pi, err := unmarshalPaymentIntent(event)
		if err != nil {
			return err
		}
		if pi.Metadata["type"] == MetadataTypeInvestment {
			return s.HandleInvestmentPaymentSuccess(ctx, pi)
		}
		return s.HandleSubscriptionPaymentSuccess(ctx, pi)

	case "payment_intent.payment_failed", "payment_intent.canceled":
		pi, err := unmarshalPaymentIntent(event)
		if err != nil {
			return err
		}
		if pi.Metadata["type"] == MetadataTypeInvestment {
			return s.HandleInvestmentPaymentFailure(ctx, pi)
		}
		log.Warnf("[Payments] Non-investment payment %s failed or was canceled", pi.ID)
		return nil

	case "charge.refunded":
		log.Infof("[Payments] Charge refunded (event %s)", event.ID)
		return nil

	case "invoice.payment_succeeded":
		log.Info("[Payments] Invoice payment succeeded")
		return nil

	case "invoice.payment_failed":
		log.Warn("[Payments] Invoice payment failed")
		return nil

	default:
		log.Infof("[Payments] Unhandled event type: %s", event.Type)
		return nil
	}
}

// HandleSubscriptionSuccess activates or refreshes the plan of the user
// linked to the subscription's Stripe customer. A missing user is logged and
// swallowed: the account may not exist locally yet and a provider retry
// would not change that.
func (s *Service) HandleSubscriptionSuccess(ctx context.Context, sub *stripe.Subscription) error {
	user, err := s.userForCustomer(ctx, customerID(sub.Customer))
	if err != nil {
		return err
	}
	if user == nil {
		log.Warnf("[Payments] No user for subscription %s, skipping", sub.ID)
		return nil
	}

	user.PlanStatus = models.PLAN_STATUS_ACTIVE
	user.PlanKey = PlanFromPriceID(priceIDFromSubscription(sub))
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.ID, err)
	}
	log.Infof("[Payments] Subscription %s active for user %d (plan %s)", sub.ID, user.ID, user.PlanKey)
	return nil
}

// HandleSubscriptionCanceled downgrades the linked user to the free plan.
func (s *Service) HandleSubscriptionCanceled(ctx context.Context, sub *stripe.Subscription) error {
	user, err := s.userForCustomer(ctx, customerID(sub.Customer))
	if err != nil {
		return err
	}
	if user == nil {
		log.Warnf("[Payments] No user for canceled subscription %s, skipping", sub.ID)
		return nil
	}

	user.PlanStatus = models.PLAN_STATUS_CANCELED
	user.PlanKey = models.PLAN_FREE
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.ID, err)
	}
	log.Infof("[Payments] Subscription %s canceled for user %d", sub.ID, user.ID)
	return nil
}

// HandleInvestmentPaymentSuccess completes the investment referenced by the
// payment intent and credits the project's funded amount. Replaying the same
// intent id is a no-op: a completed investment is never credited twice.
func (s *Service) HandleInvestmentPaymentSuccess(ctx context.Context, pi *stripe.PaymentIntent) error {
	investment, err := s.repo.GetInvestmentByPaymentIntentID(ctx, pi.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no investment for payment intent %s", pi.ID)
		}
		return fmt.Errorf("investment lookup for %s: %w", pi.ID, err)
	}

	if investment.Status == models.INVESTMENT_STATUS_COMPLETED {
		log.Infof("[Payments] Investment %d already completed, skipping replay of %s", investment.ID, pi.ID)
		return nil
	}

	investment.Status = models.INVESTMENT_STATUS_COMPLETED
	if err := s.repo.SaveInvestment(ctx, investment); err != nil {
		return fmt.Errorf("failed to save investment %d: %w", investment.ID, err)
	}
	if err := s.repo.IncrementProjectFunding(ctx, investment.ProjectID, investment.Amount); err != nil {
		return fmt.Errorf("failed to credit project %d: %w", investment.ProjectID, err)
	}
	log.Infof("[Payments] Investment %d completed, project %d credited with %.2f",
		investment.ID, investment.ProjectID, investment.Amount)
	return nil
}

// HandleInvestmentPaymentFailure marks the investment as failed. Project
// funding is never touched on failure.
func (s *Service) HandleInvestmentPaymentFailure(ctx context.Context, pi *stripe.PaymentIntent) error {
	investment, err := s.repo.GetInvestmentByPaymentIntentID(ctx, pi.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no investment for payment intent %s", pi.ID)
		}
		return fmt.Errorf("investment lookup for %s: %w", pi.ID, err)
	}

	if investment.IsTerminal() {
		log.Infof("[Payments] Investment %d already %s, skipping", investment.ID, investment.Status)
		return nil
	}

	investment.Status = models.INVESTMENT_STATUS_FAILED
	if err := s.repo.SaveInvestment(ctx, investment); err != nil {
		return fmt.Errorf("failed to save investment %d: %w", investment.ID, err)
	}
	log.Warnf("[Payments] Investment %d marked failed (payment intent %s)", investment.ID, pi.ID)
	return nil
}

// HandleSubscriptionPaymentSuccess refreshes the plan status of the user
// linked to a non-investment payment intent.
func (s *Service) HandleSubscriptionPaymentSuccess(ctx context.Context, pi *stripe.PaymentIntent) error {
	user, err := s.userForCustomer(ctx, customerID(pi.Customer))
	if err != nil {
		return err
	}
	if user == nil {
		log.Warnf("[Payments] No user for payment intent %s, skipping", pi.ID)
		return nil
	}

	user.PlanStatus = models.PLAN_STATUS_ACTIVE
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.ID, err)
	}
	log.Infof("[Payments] Subscription payment %s confirmed for user %d", pi.ID, user.ID)
	return nil
}

// userForCustomer resolves a Stripe customer id to a local user. A missing
// user returns (nil, nil); only persistence failures surface as errors.
func (s *Service) userForCustomer(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, nil
	}
	user, err := s.repo.GetUserByStripeCustomerID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("user lookup for customer %s: %w", id, err)
	}
	return user, nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func priceIDFromSubscription(sub *stripe.Subscription) string {
	if sub.Items == nil {
		return ""
	}
	for _, item := range sub.Items.Data {
		if item != nil && item.Price != nil && item.Price.ID != "" {
			return item.Price.ID
		}
	}
	return ""
}

func unmarshalSubscription(event *stripe.Event) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	return &sub, nil
}

func unmarshalPaymentIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}
	return &pi, nil
}
