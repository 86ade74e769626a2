package models

import "time"

const (
	ProjectStatusActive   = "Active"
	ProjectStatusOnHold   = "On Hold"
	ProjectStatusComplete = "Complete"
)

// Project is the internal work record created for each provisioned tenant.
// TenantID references the tenant on the managed platform; SubscriptionID (if
// set) links back to the billing subscription the tenant was provisioned from.
type Project struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"type:varchar(191);not null;index" json:"name"`
	Description        string    `gorm:"type:text" json:"description"`
	TenantID           string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"tenant_id"`
	SubscriptionID     string    `gorm:"type:varchar(64);index" json:"subscription_id"`
	Usecase            string    `gorm:"type:varchar(191)" json:"usecase"`
	Plan               string    `gorm:"type:varchar(191)" json:"plan"`
	Status             string    `gorm:"type:varchar(32);not null;default:'Active'" json:"status"`
	CustomerEmail      string    `gorm:"type:varchar(191);index" json:"customer_email"`
	TechnicalManagerID *uint     `gorm:"index" json:"technical_manager_id,omitempty"`
	ProjectManagerID   *uint     `gorm:"index" json:"project_manager_id,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
