package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
	"gorm.io/gorm"

	"github.com/investflow/investflow/app/models"
	"github.com/investflow/investflow/internal/pkg/env"
)

type fundingCall struct {
	projectID uint
	amount    float64
}

type fakeRepo struct {
	usersByCustomer map[string]*models.User
	investments     map[string]*models.Investment

	savedUsers       []*models.User
	savedInvestments []*models.Investment
	fundingCalls     []fundingCall

	ledger    map[string]*models.WebhookEvent
	processed map[uint]string
	nextID    uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		usersByCustomer: make(map[string]*models.User),
		investments:     make(map[string]*models.Investment),
		ledger:          make(map[string]*models.WebhookEvent),
		processed:       make(map[uint]string),
	}
}

// The fake honors context cancellation the way gorm's WithContext does, so
// the tests can assert the service threads the request context through.
func (r *fakeRepo) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if u, ok := r.usersByCustomer[customerID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) SaveUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.savedUsers = append(r.savedUsers, user)
	return nil
}

func (r *fakeRepo) GetInvestmentByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Investment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inv, ok := r.investments[paymentIntentID]; ok {
		return inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) SaveInvestment(ctx context.Context, investment *models.Investment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.savedInvestments = append(r.savedInvestments, investment)
	return nil
}

func (r *fakeRepo) IncrementProjectFunding(ctx context.Context, projectID uint, amount float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.fundingCalls = append(r.fundingCalls, fundingCall{projectID: projectID, amount: amount})
	return nil
}

func (r *fakeRepo) CreateWebhookEventIfNotExists(ctx context.Context, event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	if err := ctx.Err(); err != nil {
		return false, nil, err
	}
	key := event.Provider + ":" + event.ProviderEventID
	if existing, ok := r.ledger[key]; ok {
		return false, existing, nil
	}
	r.nextID++
	event.ID = r.nextID
	r.ledger[key] = event
	return true, event, nil
}

func (r *fakeRepo) MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.processed[id] = processingError
	return nil
}

func testEvent(t *testing.T, id, eventType string, object interface{}) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return &stripe.Event{
		ID:   id,
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func subscriptionObject(customerID, priceID string) map[string]interface{} {
	obj := map[string]interface{}{
		"id":       "sub_test_1",
		"customer": map[string]string{"id": customerID},
	}
	if priceID != "" {
		obj["items"] = map[string]interface{}{
			"data": []map[string]interface{}{
				{"price": map[string]string{"id": priceID}},
			},
		}
	}
	return obj
}

func paymentIntentObject(id, customerID string, metadata map[string]string) map[string]interface{} {
	obj := map[string]interface{}{"id": id}
	if customerID != "" {
		obj["customer"] = map[string]string{"id": customerID}
	}
	if metadata != nil {
		obj["metadata"] = metadata
	}
	return obj
}

func TestDispatchInvestmentPaymentSucceeded(t *testing.T) {
	repo := newFakeRepo()
	repo.investments["pi_1"] = &models.Investment{
		ID:              11,
		ProjectID:       7,
		Amount:          5000,
		Status:          models.INVESTMENT_STATUS_PENDING,
		PaymentIntentID: "pi_1",
	}
	svc := NewService(repo)

	event := testEvent(t, "evt_1", "payment_intent.succeeded",
		paymentIntentObject("pi_1", "", map[string]string{"type": "investment"}))
	require.NoError(t, svc.Dispatch(context.Background(), event))

	assert.Equal(t, models.INVESTMENT_STATUS_COMPLETED, repo.investments["pi_1"].Status)
	require.Len(t, repo.fundingCalls, 1)
	assert.Equal(t, uint(7), repo.fundingCalls[0].projectID)
	assert.Equal(t, 5000.0, repo.fundingCalls[0].amount)
}

func TestDispatchInvestmentPaymentSucceededReplay(t *testing.T) {
	repo := newFakeRepo()
	repo.investments["pi_1"] = &models.Investment{
		ID:              11,
		ProjectID:       7,
		Amount:          5000,
		Status:          models.INVESTMENT_STATUS_COMPLETED,
		PaymentIntentID: "pi_1",
	}
	svc := NewService(repo)

	event := testEvent(t, "evt_2", "payment_intent.succeeded",
		paymentIntentObject("pi_1", "", map[string]string{"type": "investment"}))
	require.NoError(t, svc.Dispatch(context.Background(), event))

	assert.Empty(t, repo.savedInvestments)
	assert.Empty(t, repo.fundingCalls)
}

func TestDispatchInvestmentPaymentSucceededUnknownIntent(t *testing.T) {
	svc := NewService(newFakeRepo())

	event := testEvent(t, "evt_3", "payment_intent.succeeded",
		paymentIntentObject("pi_missing", "", map[string]string{"type": "investment"}))
	err := svc.Dispatch(context.Background(), event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pi_missing")
}

func TestDispatchInvestmentPaymentFailed(t *testing.T) {
	repo := newFakeRepo()
	repo.investments["pi_1"] = &models.Investment{
		ID:              11,
		ProjectID:       7,
		Amount:          5000,
		Status:          models.INVESTMENT_STATUS_PENDING,
		PaymentIntentID: "pi_1",
	}
	svc := NewService(repo)

	event := testEvent(t, "evt_4", "payment_intent.payment_failed",
		paymentIntentObject("pi_1", "", map[string]string{"type": "investment"}))
	require.NoError(t, svc.Dispatch(context.Background(), event))

	assert.Equal(t, models.INVESTMENT_STATUS_FAILED, repo.investments["pi_1"].Status)
	assert.Empty(t, repo.fundingCalls)
}

func TestDispatchInvestmentPaymentFailedAlreadyTerminal(t *testing.T) {
	repo := newFakeRepo()
	repo.investments["pi_1"] = &models.Investment{
		ID:              11,
		Status:          models.INVESTMENT_STATUS_FAILED,
		PaymentIntentID: "pi_1",
	}
	svc := NewService(repo)

	event := testEvent(t, "evt_5", "payment_intent.canceled",
		paymentIntentObject("pi_1", "", map[string]string{"type": "investment"}))
	require.NoError(t, svc.Dispatch(context.Background(), event))

	assert.Empty(t, repo.savedInvestments)
}

func TestDispatchNonInvestmentPaymentSucceeded(t *testing.T) {
	repo := newFakeRepo()
	repo.usersByCustomer["cus_1"] = &models.User{
		ID:         3,
		PlanKey:    models.PLAN_BASIC,
		PlanStatus: models.PLAN_STATUS_PAST_DUE,
	}
	svc := NewService(repo)

	event := testEvent(t, "evt_6", "payment_intent.succeeded",
		paymentIntentObject("pi_sub", "cus_1", nil))
	require.NoError(t, svc.Dispatch(context.Background(), event))

	assert.Equal(t, models.PLAN_STATUS_ACTIVE, repo.usersByCustomer["cus_1"].PlanStatus)
	assert.Empty(t, repo.fundingCalls)
	require.Len(t, repo.savedUsers, 1)
}

func TestDispatchSubscriptionCreated(t *testing.T) {
	env.Env = map[string]string{"STRIPE_PRICE_BASIC": "price_basic_123"}
	t.Cleanup(func() { env.Env = nil })

	repo := newFakeRepo()
	repo.usersByCustomer["cus_1"] = &models.User{
		ID:         3,
		PlanKey:    models.PLAN_FREE,
		PlanStatus: models.PLAN_STATUS_CANCELED,
	}
	svc := NewService(repo)

	event := testEvent(t, "evt_7", "customer.subscription.created",
		subscriptionObject("cus_1", "price_basic_123"))
	require.NoError(t, svc.Dispatch(context.Background(), event))

	user := repo.usersByCustomer["cus_1"]
	assert.Equal(t, models.PLAN_BASIC, user.PlanKey)
	assert.Equal(t, models.PLAN_STATUS_ACTIVE, user.PlanStatus)
}

func TestDispatchSubscriptionDeleted(t *testing.T) {
	repo := newFakeRepo()
	repo.usersByCustomer["cus_1"] = &models.User{
		ID:         3,
		PlanKey:    models.PLAN_PREMIUM,
		PlanStatus: models.PLAN_STATUS_ACTIVE,
	}
	svc := NewService(repo)

	event := testEvent(t, "evt_8", "customer.subscription.deleted",
		subscriptionObject("cus_1", ""))
	require.NoError(t, svc.Dispatch(context.Background(), event))

	user := repo.usersByCustomer["cus_1"]
	assert.Equal(t, models.PLAN_FREE, user.PlanKey)
	assert.Equal(t, models.PLAN_STATUS_CANCELED, user.PlanStatus)
}

func TestDispatchSubscriptionMissingUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	event := testEvent(t, "evt_9", "customer.subscription.updated",
		subscriptionObject("cus_unknown", ""))
	require.NoError(t, svc.Dispatch(context.Background(), event))

	assert.Empty(t, repo.savedUsers)
}

func TestDispatchUnknownEventType(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	event := testEvent(t, "evt_10", "some.future.event", map[string]string{})
	require.NoError(t, svc.Dispatch(context.Background(), event))

	assert.Empty(t, repo.savedUsers)
	assert.Empty(t, repo.savedInvestments)
	assert.Empty(t, repo.fundingCalls)
}

func TestDispatchCanceledContext(t *testing.T) {
	repo := newFakeRepo()
	repo.investments["pi_1"] = &models.Investment{
		ID:              11,
		ProjectID:       7,
		Amount:          5000,
		Status:          models.INVESTMENT_STATUS_PENDING,
		PaymentIntentID: "pi_1",
	}
	svc := NewService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event := testEvent(t, "evt_ctx", "payment_intent.succeeded",
		paymentIntentObject("pi_1", "", map[string]string{"type": "investment"}))
	err := svc.Dispatch(ctx, event)

	// Cancellation bounds every persistence call: nothing is applied once the
	// deadline is gone.
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.INVESTMENT_STATUS_PENDING, repo.investments["pi_1"].Status)
	assert.Empty(t, repo.savedInvestments)
	assert.Empty(t, repo.fundingCalls)
}

func TestRecordEventDeduplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	event := testEvent(t, "evt_dup", "checkout.session.completed", map[string]string{})

	created, first, err := svc.RecordEvent(context.Background(), event, []byte("{}"))
	require.NoError(t, err)
	assert.True(t, created)

	created, second, err := svc.RecordEvent(context.Background(), event, []byte("{}"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}
