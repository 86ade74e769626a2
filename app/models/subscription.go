package models

import "time"

const (
	SubscriptionStatusLive      = "live"
	SubscriptionStatusTrial     = "trial"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusUnpaid    = "unpaid"
)

// Subscription mirrors a billing-provider subscription and tracks whether a
// platform tenant has already been provisioned from it.
type Subscription struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID   string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"subscription_id"`
	CustomerID       string    `gorm:"type:varchar(64);index" json:"customer_id"`
	CustomerName     string    `gorm:"type:varchar(191)" json:"customer_name"`
	Email            string    `gorm:"type:varchar(191);index" json:"email"`
	PlanCode         string    `gorm:"type:varchar(100);index" json:"plan_code"`
	PlanName         string    `gorm:"type:varchar(191)" json:"plan_name"`
	Status           string    `gorm:"type:varchar(32);index" json:"status"`
	Amount           float64   `json:"amount"`
	CurrencySymbol   string    `gorm:"type:varchar(8)" json:"currency_symbol"`
	CurrentTermStart string    `gorm:"type:varchar(32)" json:"current_term_starts_at"`
	CurrentTermEnd   string    `gorm:"type:varchar(32)" json:"current_term_ends_at"`
	Interval         int       `json:"interval"`
	IntervalUnit     string    `gorm:"type:varchar(16)" json:"interval_unit"`
	IsProvisioned    bool      `gorm:"default:false;index" json:"is_provisioned"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
