package models

import "time"

// UsecaseMapping maps a billing plan-code prefix (the part before the first
// dash, e.g. "WTS" in "WTS-100") to a business use case label.
type UsecaseMapping struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Prefix    string    `gorm:"type:varchar(16);not null;index" json:"prefix"`
	Name      string    `gorm:"type:varchar(191);not null" json:"name"`
	Position  int       `gorm:"not null;default:0;index" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
