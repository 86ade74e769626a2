package models

import "time"

// TenantProfile is a locally cached copy of a tenant profile (configuration
// tier) that exists on the managed platform. ProfileID is the platform-side
// identifier used when creating tenants.
type TenantProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"profile_id"`
	Name      string    `gorm:"type:varchar(191);not null" json:"name"`
	IsDefault bool      `gorm:"default:false;index" json:"is_default"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
