package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/investflow/investflow/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByStripeCustomerID retrieves a user by their Stripe customer id
func (r *userRepository) GetByStripeCustomerID(customerID string) (*models.User, error) {
	trimmed := strings.TrimSpace(customerID)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	err := r.db.Where("stripe_customer_id = ?", trimmed).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete removes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// ListNewestFirst retrieves all users sorted by creation date, newest first
func (r *userRepository) ListNewestFirst() ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountCreatedBefore returns the number of users created before the given time
func (r *userRepository) CountCreatedBefore(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("created_at < ?", t).Count(&count).Error
	return count, err
}

// CountByRole returns user counts grouped by role
func (r *userRepository) CountByRole() (map[string]int64, error) {
	return r.countGroupedBy("role")
}

// CountByPlan returns user counts grouped by plan key
func (r *userRepository) CountByPlan() (map[string]int64, error) {
	return r.countGroupedBy("plan_key")
}

func (r *userRepository) countGroupedBy(column string) (map[string]int64, error) {
	var results []struct {
		Key   string
		Count int64
	}
	err := r.db.Model(&models.User{}).
		Select(fmt.Sprintf("%s as `key`, COUNT(*) as count", column)).
		Group(column).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count users by %s: %w", column, err)
	}

	counts := make(map[string]int64, len(results))
	for _, result := range results {
		counts[result.Key] = result.Count
	}
	return counts, nil
}
