package models

import "time"

const (
	TaskCriticalityLow    = "low"
	TaskCriticalityMedium = "medium"
	TaskCriticalityHigh   = "high"
)

// TaskTemplate is a reusable onboarding task assigned to new tenant projects.
type TaskTemplate struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(191);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Criticality string    `gorm:"type:varchar(16);not null;default:'medium'" json:"criticality"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
