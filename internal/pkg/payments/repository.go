package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/investflow/investflow/app/models"
	"github.com/investflow/investflow/app/repository"
)

// Repository provides the DB operations used by the payments service. Every
// call is bounded by the caller's context so a webhook delivery can never hold
// a connection past its deadline.
type Repository interface {
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	GetInvestmentByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Investment, error)
	SaveInvestment(ctx context.Context, investment *models.Investment) error
	IncrementProjectFunding(ctx context.Context, projectID uint, amount float64) error
	CreateWebhookEventIfNotExists(ctx context.Context, event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) repos(ctx context.Context) *repository.Repositories {
	return repository.NewRepositories(r.db.WithContext(ctx))
}

func (r *gormRepository) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	return r.repos(ctx).User.GetByStripeCustomerID(customerID)
}

func (r *gormRepository) SaveUser(ctx context.Context, user *models.User) error {
	return r.repos(ctx).User.Update(user)
}

func (r *gormRepository) GetInvestmentByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Investment, error) {
	return r.repos(ctx).Investment.GetByPaymentIntentID(paymentIntentID)
}

func (r *gormRepository) SaveInvestment(ctx context.Context, investment *models.Investment) error {
	return r.repos(ctx).Investment.Update(investment)
}

func (r *gormRepository) IncrementProjectFunding(ctx context.Context, projectID uint, amount float64) error {
	return r.repos(ctx).Project.IncrementFunding(projectID, amount)
}

func (r *gormRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	return r.repos(ctx).WebhookEvent.CreateIfNotExists(event)
}

func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error {
	return r.repos(ctx).WebhookEvent.MarkProcessed(id, processingError)
}
