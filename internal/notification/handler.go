package notification

import (
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/email-logs?status=failed&type=leave_request (admin)
func ListEmailLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.EmailLog{})

		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if typ := c.Query("type"); typ != "" {
			q = q.Where("type = ?", typ)
		}

		var logs []models.EmailLog
		if err := q.Order("sent_at DESC").Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list email logs")
		}
		return c.JSON(logs)
	}
}
