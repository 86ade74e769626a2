package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	RoleAdmin            = "admin"
	RoleTechnicalManager = "technical_manager"
	RoleProjectManager   = "project_manager"
)

// User is a staff member of the admin console. Role holds one or more
// comma-separated role names.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Email     string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"email" validate:"required,email"`
	Role      string         `gorm:"type:varchar(100);not null;default:'project_manager'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// HasRole reports whether the user carries the given role. Roles are stored
// comma-separated, e.g. "technical_manager,project_manager".
func (u *User) HasRole(role string) bool {
	for _, r := range strings.Split(u.Role, ",") {
		if strings.TrimSpace(r) == role {
			return true
		}
	}
	return false
}

// EmailLocalPart returns the part of the user's email before the "@".
func (u *User) EmailLocalPart() string {
	if i := strings.Index(u.Email, "@"); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}
