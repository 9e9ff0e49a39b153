package settings

import (
	"errors"
	"strings"

	"attendance-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DepartmentPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type CreateLeaveTypeRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	DaysAllowed     int    `json:"days_allowed"`
	RequireApproval *bool  `json:"require_approval"`
	Color           string `json:"color"`
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateName):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrDefaultProtected):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrVersionConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Settings operation failed")
	}
}

// GET /api/settings
func GetSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := Get()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load settings")
		}
		return c.JSON(s)
	}
}

// PUT /api/settings (admin)
func UpdateSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch UpdatePatch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if patch.Version <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "version is required")
		}

		s, err := Update(&patch)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(s)
	}
}

// -------------------------
// Departments
// -------------------------

// GET /api/settings/departments (any authenticated user)
func ListDepartmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		depts, err := ListDepartments()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list departments")
		}
		return c.JSON(depts)
	}
}

// POST /api/settings/departments (admin)
func AddDepartmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DepartmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		dept, err := AddDepartment(body.Name, body.Description)
		if err != nil {
			return mapServiceError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(dept)
	}
}

// PUT /api/settings/departments/:id (admin)
func UpdateDepartmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body DepartmentPatch
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
		}

		dept, err := UpdateDepartment(uint(id), body.Name, body.Description)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(dept)
	}
}

// DELETE /api/settings/departments/:id (admin)
func DeleteDepartmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}
		if err := DeleteDepartment(uint(id)); err != nil {
			return mapServiceError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Leave types
// -------------------------

// GET /api/settings/leave-types (any authenticated user)
func ListLeaveTypesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		types, err := ListLeaveTypes()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list leave types")
		}
		return c.JSON(types)
	}
}

// POST /api/settings/leave-types (admin)
func AddLeaveTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLeaveTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		if body.DaysAllowed < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "days_allowed cannot be negative")
		}

		lt := models.LeaveType{
			Name:            body.Name,
			Description:     body.Description,
			DaysAllowed:     body.DaysAllowed,
			RequireApproval: true,
			Color:           body.Color,
			IsActive:        true,
		}
		if body.RequireApproval != nil {
			lt.RequireApproval = *body.RequireApproval
		}

		created, err := AddLeaveType(&lt)
		if err != nil {
			return mapServiceError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PUT /api/settings/leave-types/:id (admin)
func UpdateLeaveTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body LeaveTypePatch
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
		}
		if body.DaysAllowed != nil && *body.DaysAllowed < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "days_allowed cannot be negative")
		}

		lt, err := UpdateLeaveType(uint(id), &body)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(lt)
	}
}

// DELETE /api/settings/leave-types/:id (admin)
func DeleteLeaveTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}
		if err := DeleteLeaveType(uint(id)); err != nil {
			return mapServiceError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
