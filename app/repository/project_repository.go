package repository

import (
	"github.com/nibiaa/TenantDesk/app/models"
	"gorm.io/gorm"
)

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a project repository backed by GORM.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *projectRepository) GetByTenantID(tenantID string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("tenant_id = ?", tenantID).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List() ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Order("created_at DESC").Find(&projects).Error
	return projects, err
}
