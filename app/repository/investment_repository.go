package repository

import (
	"strings"

	"github.com/investflow/investflow/app/models"
	"gorm.io/gorm"
)

// investmentRepository implements the InvestmentRepository interface
type investmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository creates a new investment repository instance
func NewInvestmentRepository(db *gorm.DB) InvestmentRepository {
	return &investmentRepository{db: db}
}

// Create creates a new investment in the database
func (r *investmentRepository) Create(investment *models.Investment) error {
	return r.db.Create(investment).Error
}

// GetByID retrieves an investment by its ID
func (r *investmentRepository) GetByID(id uint) (*models.Investment, error) {
	var investment models.Investment
	err := r.db.First(&investment, id).Error
	if err != nil {
		return nil, err
	}
	return &investment, nil
}

// GetByPaymentIntentID retrieves an investment by its payment intent id
func (r *investmentRepository) GetByPaymentIntentID(paymentIntentID string) (*models.Investment, error) {
	trimmed := strings.TrimSpace(paymentIntentID)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var investment models.Investment
	err := r.db.Where("payment_intent_id = ?", trimmed).First(&investment).Error
	if err != nil {
		return nil, err
	}
	return &investment, nil
}

// Update updates an existing investment in the database
func (r *investmentRepository) Update(investment *models.Investment) error {
	return r.db.Save(investment).Error
}

// ListByUserID retrieves all investments placed by the given user
func (r *investmentRepository) ListByUserID(userID uint) ([]models.Investment, error) {
	var investments []models.Investment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&investments).Error
	return investments, err
}
