package repository

import (
	"github.com/nibiaa/TenantDesk/app/models"
	"gorm.io/gorm"
)

// MappingRepository supplies the ordered lookup tables and the cached platform
// profile list used by plan resolution. The tables are read-only here; editing
// them belongs to the admin CRUD screens.
type MappingRepository interface {
	LoadUsecaseMappings() ([]models.UsecaseMapping, error)
	LoadProfileMappings() ([]models.PlanProfileMapping, error)
	LoadTenantProfiles() ([]models.TenantProfile, error)
	ReplaceTenantProfiles(profiles []models.TenantProfile) error
}

// SubscriptionRepository defines the interface for the local billing
// subscription mirror.
type SubscriptionRepository interface {
	Upsert(sub *models.Subscription) error
	GetBySubscriptionID(subscriptionID string) (*models.Subscription, error)
	List(includeProvisioned bool) ([]models.Subscription, error)
	MarkProvisioned(subscriptionID string) error
}

// UserRepository defines the interface for staff user lookups.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	ListActive() ([]models.User, error)
}

// TaskTemplateRepository defines the interface for task template lookups.
type TaskTemplateRepository interface {
	GetAll() ([]models.TaskTemplate, error)
	GetByIDs(ids []uint) ([]models.TaskTemplate, error)
}

// ProjectRepository defines the interface for project records created per
// provisioned tenant.
type ProjectRepository interface {
	Create(project *models.Project) error
	GetByTenantID(tenantID string) (*models.Project, error)
	List() ([]models.Project, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Mapping      MappingRepository
	Subscription SubscriptionRepository
	User         UserRepository
	TaskTemplate TaskTemplateRepository
	Project      ProjectRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Mapping:      NewMappingRepository(db),
		Subscription: NewSubscriptionRepository(db),
		User:         NewUserRepository(db),
		TaskTemplate: NewTaskTemplateRepository(db),
		Project:      NewProjectRepository(db),
	}
}
