package repository

import (
	"time"

	"github.com/investflow/investflow/app/models"
	"gorm.io/gorm"
)

// projectRepository implements the ProjectRepository interface
type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create creates a new project in the database
func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// GetByID retrieves a project by its ID
func (r *projectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update updates an existing project in the database
func (r *projectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// List retrieves a paginated list of projects
func (r *projectRepository) List(offset, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&projects).Error
	return projects, err
}

// Count returns the total number of projects
func (r *projectRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Count(&count).Error
	return count, err
}

// ListExpiredPending returns pending projects whose end date has been reached.
// The comparison is inclusive so a project expiring exactly now is included.
func (r *projectRepository) ListExpiredPending(now time.Time) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Where("status = ? AND end_date <= ?", models.PROJECT_STATUS_PENDING, now).
		Find(&projects).Error
	return projects, err
}

// CompleteIfPending flips a pending project to completed. Only the status
// column is written and only while the row is still pending, so a funding
// credit landing between a sweep's read and its write is never clobbered.
func (r *projectRepository) CompleteIfPending(id uint) (bool, error) {
	tx := r.db.Model(&models.Project{}).
		Where("id = ? AND status = ?", id, models.PROJECT_STATUS_PENDING).
		UpdateColumn("status", models.PROJECT_STATUS_COMPLETED)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// IncrementFunding atomically adds amount to the project's funded amount.
func (r *projectRepository) IncrementFunding(id uint, amount float64) error {
	return r.db.Model(&models.Project{}).
		Where("id = ?", id).
		UpdateColumn("funded_amount", gorm.Expr("funded_amount + ?", amount)).Error
}
