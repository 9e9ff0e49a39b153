package employee

import (
	"strings"

	"attendance-backend/internal/auth"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/settings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

type CreateEmployeeRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=100"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Role       string  `json:"role" validate:"omitempty,oneof=admin manager employee"`
	Department *string `json:"department"`
	WorkStart  *string `json:"work_start" validate:"omitempty,datetime=15:04"`
	WorkEnd    *string `json:"work_end" validate:"omitempty,datetime=15:04"`
}

type UpdateEmployeeRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Password   *string `json:"password" validate:"omitempty,min=8"`
	Role       *string `json:"role" validate:"omitempty,oneof=admin manager employee"`
	Department *string `json:"department"`
	WorkStart  *string `json:"work_start" validate:"omitempty,datetime=15:04"`
	WorkEnd    *string `json:"work_end" validate:"omitempty,datetime=15:04"`
	Active     *bool   `json:"active"`
}

type EmployeeResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	Department *string         `json:"department"`
	WorkStart  string          `json:"work_start"`
	WorkEnd    string          `json:"work_end"`
	Active     bool            `json:"active"`
	CreatedAt  string          `json:"created_at"`
}

func toEmployeeResponse(u models.User) EmployeeResponse {
	return EmployeeResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		WorkStart:  u.WorkStart,
		WorkEnd:    u.WorkEnd,
		Active:     u.Active,
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/employees
func ListEmployeesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}

		q := p.VisibleUsers(database.DB.Model(&models.User{}))

		var users []models.User
		if err := q.Order("created_at DESC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list employees")
		}

		res := make([]EmployeeResponse, 0, len(users))
		for _, u := range users {
			res = append(res, toEmployeeResponse(u))
		}
		return c.JSON(res)
	}
}

// GET /api/employees/:id
func GetEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Employee not found")
		}
		if !p.CanViewUser(&user) {
			return fiber.NewError(fiber.StatusForbidden, "You do not have access to this employee")
		}

		return c.JSON(toEmployeeResponse(user))
	}
}

// POST /api/employees (admin, or manager for employee accounts in own department)
func CreateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}

		var body CreateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if err := validate.Struct(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "name, valid email and password (min 8 chars) are required")
		}

		role := models.UserRole(body.Role)
		if body.Role == "" {
			role = models.RoleEmployee
		}
		if !p.CanCreateUser(role, body.Department) {
			return fiber.NewError(fiber.StatusForbidden, "You may only create employee accounts in your own department")
		}

		var exist models.User
		if err := database.DB.Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "This email is already registered")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
			Department:   body.Department,
			Active:       true,
		}

		// working hours fall back to company defaults
		if s, err := settings.Get(); err == nil {
			user.WorkStart = s.DefaultWorkStart
			user.WorkEnd = s.DefaultWorkEnd
		}
		if body.WorkStart != nil {
			user.WorkStart = *body.WorkStart
		}
		if body.WorkEnd != nil {
			user.WorkEnd = *body.WorkEnd
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create employee")
		}

		return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(user))
	}
}

// PUT /api/employees/:id
func UpdateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Employee not found")
		}
		if !p.CanManageUser(&user) {
			return fiber.NewError(fiber.StatusForbidden, "You do not have permission to edit this employee")
		}

		var body UpdateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid field values")
		}

		// role, department and reactivation are admin-only changes
		if (body.Role != nil || body.Department != nil || body.Active != nil) && !p.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "Only an admin can change role, department or active state")
		}

		if body.Name != nil {
			user.Name = strings.TrimSpace(*body.Name)
		}
		if body.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
			}
			user.PasswordHash = string(hash)
		}
		if body.Role != nil {
			user.Role = models.UserRole(*body.Role)
		}
		if body.Department != nil {
			user.Department = body.Department
		}
		if body.WorkStart != nil {
			user.WorkStart = *body.WorkStart
		}
		if body.WorkEnd != nil {
			user.WorkEnd = *body.WorkEnd
		}
		if body.Active != nil {
			user.Active = *body.Active
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update employee")
		}

		return c.JSON(toEmployeeResponse(user))
	}
}

// DELETE /api/employees/:id
// Deactivates the account. Nothing is ever hard-deleted: the attendance
// ledger and request history must keep resolving their owner.
func DeactivateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}
		if uint(id) == p.UserID {
			return fiber.NewError(fiber.StatusBadRequest, "You cannot deactivate your own account")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Employee not found")
		}
		if !p.CanManageUser(&user) {
			return fiber.NewError(fiber.StatusForbidden, "You do not have permission to deactivate this employee")
		}

		if err := database.DB.Model(&user).Update("active", false).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not deactivate employee")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
