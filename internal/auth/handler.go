package auth

import (
	"strings"
	"time"

	"attendance-backend/internal/config"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SetupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IsInitialized: at least one active admin exists AND the marker row exists.
func IsInitialized() (bool, error) {
	var admins int64
	if err := database.DB.Model(&models.User{}).
		Where("role = ? AND active = ?", models.RoleAdmin, true).
		Count(&admins).Error; err != nil {
		return false, err
	}
	if admins == 0 {
		return false, nil
	}

	var markers int64
	if err := database.DB.Model(&models.SystemMarker{}).Count(&markers).Error; err != nil {
		return false, err
	}
	return markers > 0, nil
}

// GET /api/system/status (public, drives the bootstrap-vs-login entry screen)
func SystemStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		initialized, err := IsInitialized()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read system state")
		}
		return c.JSON(fiber.Map{"initialized": initialized})
	}
}

// POST /api/auth/setup (public, one-time)
// Creates the first admin, the initialization marker and the seeded settings
// in one transaction. Refused once the system is initialized.
func SetupHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		initialized, err := IsInitialized()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read system state")
		}
		if initialized {
			return fiber.NewError(fiber.StatusForbidden, "System is already initialized")
		}

		var body SetupRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			Active:       true,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.SystemMarker{InitializedAt: time.Now()}).Error; err != nil {
				return err
			}
			return settings.Seed(tx)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not initialize system")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// POST /api/auth/login (public)
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Wrong email or password")
		}
		if !user.Active {
			return fiber.NewError(fiber.StatusUnauthorized, "Account disabled")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Wrong email or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":         user.ID,
				"name":       user.Name,
				"email":      user.Email,
				"role":       user.Role,
				"department": user.Department,
			},
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := Principal(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", p.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User not found")
		}

		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"department": user.Department,
			"work_start": user.WorkStart,
			"work_end":   user.WorkEnd,
		})
	}
}
