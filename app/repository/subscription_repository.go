package repository

import (
	"github.com/nibiaa/TenantDesk/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a subscription repository backed by GORM.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Upsert(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subscription_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id",
			"customer_name",
			"email",
			"plan_code",
			"plan_name",
			"status",
			"amount",
			"currency_symbol",
			"current_term_start",
			"current_term_end",
			"interval",
			"interval_unit",
			"is_provisioned",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("subscription_id = ?", sub.SubscriptionID).First(sub).Error
}

func (r *subscriptionRepository) GetBySubscriptionID(subscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("subscription_id = ?", subscriptionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) List(includeProvisioned bool) ([]models.Subscription, error) {
	var subs []models.Subscription
	q := r.db.Order("created_at DESC")
	if !includeProvisioned {
		q = q.Where("is_provisioned = ?", false)
	}
	err := q.Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) MarkProvisioned(subscriptionID string) error {
	return r.db.Model(&models.Subscription{}).
		Where("subscription_id = ?", subscriptionID).
		Update("is_provisioned", true).Error
}
