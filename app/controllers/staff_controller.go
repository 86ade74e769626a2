package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nibiaa/TenantDesk/app/repository"
)

// StaffController exposes the lookup lists the provisioning form needs:
// active staff users and the onboarding task templates.
type StaffController struct {
	repos *repository.Repositories
}

func NewStaffController(repos *repository.Repositories) *StaffController {
	return &StaffController{repos: repos}
}

// HandleListUsers returns the active staff users.
// GET /api/v1/users
func (sc *StaffController) HandleListUsers(c *fiber.Ctx) error {
	users, err := sc.repos.User.ListActive()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "user list failed", "message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"users": users})
}

// HandleListTaskTemplates returns all onboarding task templates.
// GET /api/v1/task-templates
func (sc *StaffController) HandleListTaskTemplates(c *fiber.Ctx) error {
	templates, err := sc.repos.TaskTemplate.GetAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "task template list failed", "message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"task_templates": templates})
}
