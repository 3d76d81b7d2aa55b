package models

import (
	"time"
)

const (
	PROJECT_STATUS_PENDING   = "pending"
	PROJECT_STATUS_ACTIVE    = "active"
	PROJECT_STATUS_COMPLETED = "completed"
)

type Project struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"type:varchar(200)" json:"title" validate:"required,min=3,max=200"`
	Description    string    `gorm:"type:text" json:"description"`
	Category       string    `gorm:"type:varchar(100);index" json:"category"`
	MinInvestment  float64   `json:"min_investment"`
	ROIPercent     float64   `json:"roi_percent"`
	TargetAmount   float64   `json:"target_amount" validate:"gt=0"`
	FundedAmount   float64   `gorm:"default:0" json:"funded_amount"`
	DurationMonths int       `json:"duration_months"`
	Status         string    `gorm:"type:varchar(50);default:'pending';index" json:"status" validate:"oneof=pending active completed"`
	IsPremium      bool      `gorm:"default:false" json:"is_premium"`
	ImageURL       string    `gorm:"type:varchar(255)" json:"image_url"`
	EndDate        time.Time `gorm:"index" json:"end_date"`
	CreatedBy      uint      `gorm:"index" json:"created_by"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsExpired reports whether the project has reached its end date. The
// comparison is inclusive: a project exactly at its end date counts as expired.
func (p *Project) IsExpired(now time.Time) bool {
	return !p.EndDate.After(now)
}
