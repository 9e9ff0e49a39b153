package attendance

import (
	"errors"
	"fmt"
	"time"

	"attendance-backend/internal/auth"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ClockRequest struct {
	Timestamp *string `json:"timestamp"` // RFC3339, defaults to now
}

type EventResponse struct {
	ID        uint             `json:"id"`
	UserID    uint             `json:"user_id"`
	Type      models.ClockType `json:"type"`
	Timestamp string           `json:"timestamp"`
	CreatedAt string           `json:"created_at"`
}

func toEventResponse(e models.AttendanceEvent) EventResponse {
	return EventResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		Type:      e.Type,
		Timestamp: e.Timestamp.Format(time.RFC3339),
		CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func parseClockTime(body *ClockRequest) (time.Time, error) {
	if body == nil || body.Timestamp == nil || *body.Timestamp == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, *body.Timestamp)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "timestamp must be RFC3339")
	}
	return t, nil
}

func clockHandler(action models.ClockType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}

		var body ClockRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
		}

		at, err := parseClockTime(&body)
		if err != nil {
			return err
		}

		event, err := Clock(p.UserID, action, at)
		if err != nil {
			switch {
			case errors.Is(err, ErrAlreadyClockedIn), errors.Is(err, ErrNotClockedIn):
				return fiber.NewError(fiber.StatusConflict, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Clock action failed")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toEventResponse(*event))
	}
}

// POST /api/attendance/clock-in
func ClockInHandler() fiber.Handler {
	return clockHandler(models.ClockIn)
}

// POST /api/attendance/clock-out
func ClockOutHandler() fiber.Handler {
	return clockHandler(models.ClockOut)
}

// GET /api/attendance/today?date=2025-06-10
// The day boundary follows the caller's local date; without a date parameter
// the server's local day is used.
func TodayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}

		day := time.Now()
		if dateStr := c.Query("date"); dateStr != "" {
			d, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
			}
			day = d
		}

		events := TodayEvents(p.UserID, day)
		res := make([]EventResponse, 0, len(events))
		for _, e := range events {
			res = append(res, toEventResponse(e))
		}
		return c.JSON(res)
	}
}

func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" must be YYYY-MM-DD")
	}
	return &t, nil
}

func parseUserIDQuery(c *fiber.Ctx) (*uint, error) {
	s := c.Query("user_id")
	if s == "" {
		return nil, nil
	}
	var uid uint
	if _, err := fmt.Sscan(s, &uid); err != nil || uid == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "user_id is invalid")
	}
	return &uid, nil
}

// GET /api/attendance/records?user_id=&start=&end=
// Visibility is derived from the caller's role; a user_id outside the
// caller's scope simply yields nothing.
func RecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}

		userID, err := parseUserIDQuery(c)
		if err != nil {
			return err
		}
		start, err := parseDateQuery(c, "start")
		if err != nil {
			return err
		}
		end, err := parseDateQuery(c, "end")
		if err != nil {
			return err
		}
		if end != nil {
			// inclusive end date
			e := end.Add(24 * time.Hour)
			end = &e
		}

		events, err := Records(p, userID, start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list attendance records")
		}

		res := make([]EventResponse, 0, len(events))
		for _, e := range events {
			res = append(res, toEventResponse(e))
		}
		return c.JSON(res)
	}
}

// GET /api/attendance/report?user_id=&start=&end= (manager/admin)
func ReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}

		userID, err := parseUserIDQuery(c)
		if err != nil {
			return err
		}
		start, err := parseDateQuery(c, "start")
		if err != nil {
			return err
		}
		end, err := parseDateQuery(c, "end")
		if err != nil {
			return err
		}
		if start == nil || end == nil {
			return fiber.NewError(fiber.StatusBadRequest, "start and end are required")
		}
		endExclusive := end.Add(24 * time.Hour)

		// sanity check on the user filter: report only spans visible users
		if userID != nil {
			var target models.User
			if err := database.DB.First(&target, "id = ?", *userID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "User not found")
			}
			if !p.CanViewUser(&target) {
				return fiber.NewError(fiber.StatusForbidden, "You do not have access to this user's records")
			}
		}

		reports, err := Report(p, userID, *start, endExclusive)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build report")
		}
		return c.JSON(reports)
	}
}
