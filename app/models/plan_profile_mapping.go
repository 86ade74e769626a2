package models

import "time"

// PlanProfileMapping maps a billing plan keyword to a platform tenant profile
// by name. The table is ordered by Position and that order is significant:
// profile resolution walks the table top to bottom and stops at the first
// matching entry.
type PlanProfileMapping struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PlanKeyword string    `gorm:"type:varchar(100);not null;index" json:"plan_keyword"`
	ProfileName string    `gorm:"type:varchar(191);not null" json:"profile_name"`
	Position    int       `gorm:"not null;default:0;index" json:"position"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
