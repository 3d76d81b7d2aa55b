package models

import (
	"time"
)

const (
	INVESTMENT_STATUS_PENDING   = "pending"
	INVESTMENT_STATUS_COMPLETED = "completed"
	INVESTMENT_STATUS_FAILED    = "failed"
)

type Investment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	ProjectID       uint      `gorm:"index;not null" json:"project_id"`
	Amount          float64   `json:"amount" validate:"gt=0"`
	Status          string    `gorm:"type:varchar(50);default:'pending';index" json:"status" validate:"oneof=pending completed failed"`
	PaymentIntentID string    `gorm:"type:varchar(100);uniqueIndex" json:"payment_intent_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the investment already reached a final status.
// Terminal investments are never transitioned again by webhook replays.
func (i *Investment) IsTerminal() bool {
	return i.Status == INVESTMENT_STATUS_COMPLETED || i.Status == INVESTMENT_STATUS_FAILED
}
