package repository

import (
	"github.com/nibiaa/TenantDesk/app/models"
	"gorm.io/gorm"
)

type taskTemplateRepository struct {
	db *gorm.DB
}

// NewTaskTemplateRepository creates a task template repository backed by GORM.
func NewTaskTemplateRepository(db *gorm.DB) TaskTemplateRepository {
	return &taskTemplateRepository{db: db}
}

func (r *taskTemplateRepository) GetAll() ([]models.TaskTemplate, error) {
	var templates []models.TaskTemplate
	err := r.db.Order("title ASC").Find(&templates).Error
	return templates, err
}

func (r *taskTemplateRepository) GetByIDs(ids []uint) ([]models.TaskTemplate, error) {
	var templates []models.TaskTemplate
	if len(ids) == 0 {
		return templates, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&templates).Error
	return templates, err
}
