package repository

import (
	"github.com/nibiaa/TenantDesk/app/models"
	"gorm.io/gorm"
)

type mappingRepository struct {
	db *gorm.DB
}

// NewMappingRepository creates a mapping repository backed by GORM.
func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepository{db: db}
}

// LoadUsecaseMappings returns all usecase mappings in table order.
func (r *mappingRepository) LoadUsecaseMappings() ([]models.UsecaseMapping, error) {
	var mappings []models.UsecaseMapping
	err := r.db.Order("position ASC, id ASC").Find(&mappings).Error
	return mappings, err
}

// LoadProfileMappings returns active plan-profile mappings in table order.
// The order matters: resolution is first-match-wins.
func (r *mappingRepository) LoadProfileMappings() ([]models.PlanProfileMapping, error) {
	var mappings []models.PlanProfileMapping
	err := r.db.Where("is_active = ?", true).Order("position ASC, id ASC").Find(&mappings).Error
	return mappings, err
}

// LoadTenantProfiles returns the cached platform profiles, default first.
func (r *mappingRepository) LoadTenantProfiles() ([]models.TenantProfile, error) {
	var profiles []models.TenantProfile
	err := r.db.Order("is_default DESC, id ASC").Find(&profiles).Error
	return profiles, err
}

// ReplaceTenantProfiles swaps the cached profile list for a freshly fetched
// one inside a transaction.
func (r *mappingRepository) ReplaceTenantProfiles(profiles []models.TenantProfile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.TenantProfile{}).Error; err != nil {
			return err
		}
		if len(profiles) == 0 {
			return nil
		}
		return tx.Create(&profiles).Error
	})
}
