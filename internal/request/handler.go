package request

import (
	"errors"
	"fmt"
	"time"

	"attendance-backend/internal/auth"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/scope"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required"`
}

type CreateOvertimeRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Reason    string `json:"reason" validate:"required"`
}

type ReviewRequest struct {
	Comment string `json:"comment"`
}

type LeaveResponse struct {
	ID            uint                 `json:"id"`
	UserID        uint                 `json:"user_id"`
	LeaveType     string               `json:"leave_type"`
	StartDate     string               `json:"start_date"`
	EndDate       string               `json:"end_date"`
	Days          int                  `json:"days"`
	Reason        string               `json:"reason"`
	Status        models.RequestStatus `json:"status"`
	ReviewerID    *uint                `json:"reviewer_id"`
	ReviewComment *string              `json:"review_comment"`
	ReviewedAt    *string              `json:"reviewed_at"`
	CreatedAt     string               `json:"created_at"`
}

type OvertimeResponse struct {
	ID            uint                 `json:"id"`
	UserID        uint                 `json:"user_id"`
	Date          string               `json:"date"`
	StartTime     string               `json:"start_time"`
	EndTime       string               `json:"end_time"`
	Hours         float64              `json:"hours"`
	Reason        string               `json:"reason"`
	Status        models.RequestStatus `json:"status"`
	ReviewerID    *uint                `json:"reviewer_id"`
	ReviewComment *string              `json:"review_comment"`
	ReviewedAt    *string              `json:"reviewed_at"`
	CreatedAt     string               `json:"created_at"`
}

func toLeaveResponse(r models.LeaveRequest) LeaveResponse {
	res := LeaveResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		LeaveType:     r.LeaveType,
		StartDate:     r.StartDate.Format("2006-01-02"),
		EndDate:       r.EndDate.Format("2006-01-02"),
		Days:          r.Days,
		Reason:        r.Reason,
		Status:        r.Status,
		ReviewerID:    r.ReviewerID,
		ReviewComment: r.ReviewComment,
		CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if r.ReviewedAt != nil {
		s := r.ReviewedAt.Format("2006-01-02 15:04:05")
		res.ReviewedAt = &s
	}
	return res
}

func toOvertimeResponse(r models.OvertimeRequest) OvertimeResponse {
	res := OvertimeResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		Date:          r.Date.Format("2006-01-02"),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Hours:         r.Hours,
		Reason:        r.Reason,
		Status:        r.Status,
		ReviewerID:    r.ReviewerID,
		ReviewComment: r.ReviewComment,
		CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if r.ReviewedAt != nil {
		s := r.ReviewedAt.Format("2006-01-02 15:04:05")
		res.ReviewedAt = &s
	}
	return res
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyReviewed):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidDates), errors.Is(err, ErrInvalidHours), errors.Is(err, ErrEmptyReason):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, scope.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Request operation failed")
	}
}

func currentUser(c *fiber.Ctx) (*models.User, scope.Principal, error) {
	p, err := auth.Principal(c)
	if err != nil {
		return nil, scope.Principal{}, err
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", p.UserID).Error; err != nil {
		return nil, p, fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}
	return &user, p, nil
}

// POST /api/leave-requests
func CreateLeaveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _, err := currentUser(c)
		if err != nil {
			return err
		}

		var body CreateLeaveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "leave_type, start_date, end_date and reason are required")
		}

		start, _ := time.Parse("2006-01-02", body.StartDate)
		end, _ := time.Parse("2006-01-02", body.EndDate)

		req, err := SubmitLeave(user, body.LeaveType, start, end, body.Reason)
		if err != nil {
			return mapServiceError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toLeaveResponse(*req))
	}
}

// POST /api/overtime-requests
func CreateOvertimeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _, err := currentUser(c)
		if err != nil {
			return err
		}

		var body CreateOvertimeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate.Struct(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date, start_time, end_time and reason are required")
		}

		date, _ := time.Parse("2006-01-02", body.Date)

		req, err := SubmitOvertime(user, date, body.StartTime, body.EndTime, body.Reason)
		if err != nil {
			return mapServiceError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toOvertimeResponse(*req))
	}
}

func parseListFilters(c *fiber.Ctx) (*uint, *models.RequestStatus, error) {
	var userID *uint
	if s := c.Query("user_id"); s != "" {
		var uid uint
		if _, err := fmt.Sscan(s, &uid); err != nil || uid == 0 {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "user_id is invalid")
		}
		userID = &uid
	}

	var status *models.RequestStatus
	if s := c.Query("status"); s != "" {
		st := models.RequestStatus(s)
		switch st {
		case models.StatusPending, models.StatusApproved, models.StatusRejected:
			status = &st
		default:
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "status must be pending|approved|rejected")
		}
	}

	return userID, status, nil
}

// GET /api/leave-requests?user_id=&status=
func ListLeaveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}
		userID, status, err := parseListFilters(c)
		if err != nil {
			return err
		}

		reqs, err := ListLeave(p, userID, status)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list leave requests")
		}

		res := make([]LeaveResponse, 0, len(reqs))
		for _, r := range reqs {
			res = append(res, toLeaveResponse(r))
		}
		return c.JSON(res)
	}
}

// GET /api/overtime-requests?user_id=&status=
func ListOvertimeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}
		userID, status, err := parseListFilters(c)
		if err != nil {
			return err
		}

		reqs, err := ListOvertime(p, userID, status)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list overtime requests")
		}

		res := make([]OvertimeResponse, 0, len(reqs))
		for _, r := range reqs {
			res = append(res, toOvertimeResponse(r))
		}
		return c.JSON(res)
	}
}

func reviewLeaveHandler(newStatus models.RequestStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body ReviewRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
		}

		req, err := ReviewLeave(p, uint(id), newStatus, body.Comment)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(toLeaveResponse(*req))
	}
}

func reviewOvertimeHandler(newStatus models.RequestStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.Principal(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var body ReviewRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
		}

		req, err := ReviewOvertime(p, uint(id), newStatus, body.Comment)
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(toOvertimeResponse(*req))
	}
}

// POST /api/leave-requests/:id/approve (manager/admin)
func ApproveLeaveHandler() fiber.Handler {
	return reviewLeaveHandler(models.StatusApproved)
}

// POST /api/leave-requests/:id/reject (manager/admin)
func RejectLeaveHandler() fiber.Handler {
	return reviewLeaveHandler(models.StatusRejected)
}

// POST /api/overtime-requests/:id/approve (manager/admin)
func ApproveOvertimeHandler() fiber.Handler {
	return reviewOvertimeHandler(models.StatusApproved)
}

// POST /api/overtime-requests/:id/reject (manager/admin)
func RejectOvertimeHandler() fiber.Handler {
	return reviewOvertimeHandler(models.StatusRejected)
}
