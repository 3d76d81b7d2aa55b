package repository

import (
	"time"

	"github.com/investflow/investflow/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByStripeCustomerID(customerID string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	ListNewestFirst() ([]models.User, error)
	Count() (int64, error)
	CountCreatedBefore(t time.Time) (int64, error)
	CountByRole() (map[string]int64, error)
	CountByPlan() (map[string]int64, error)
}

// ProjectRepository defines the interface for project-related database operations
type ProjectRepository interface {
	Create(project *models.Project) error
	GetByID(id uint) (*models.Project, error)
	Update(project *models.Project) error
	List(offset, limit int) ([]models.Project, error)
	Count() (int64, error)
	ListExpiredPending(now time.Time) ([]models.Project, error)
	CompleteIfPending(id uint) (bool, error)
	IncrementFunding(id uint, amount float64) error
}

// InvestmentRepository defines the interface for investment-related database operations
type InvestmentRepository interface {
	Create(investment *models.Investment) error
	GetByID(id uint) (*models.Investment, error)
	GetByPaymentIntentID(paymentIntentID string) (*models.Investment, error)
	Update(investment *models.Investment) error
	ListByUserID(userID uint) ([]models.Investment, error)
}

// WebhookEventRepository defines the interface for the webhook event ledger
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
	ListFailed(limit int) ([]models.WebhookEvent, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Project      ProjectRepository
	Investment   InvestmentRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Project:      NewProjectRepository(db),
		Investment:   NewInvestmentRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
