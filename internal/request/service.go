package request

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/notification"
	"attendance-backend/internal/scope"
	"attendance-backend/internal/settings"
)

var (
	ErrNotFound        = errors.New("request not found")
	ErrAlreadyReviewed = errors.New("request already reviewed")
	ErrInvalidDates    = errors.New("end date must not be before start date")
	ErrInvalidHours    = errors.New("overtime must span a positive duration")
	ErrEmptyReason     = errors.New("reason is required")
)

// DayCount is the inclusive span: 2025-06-20..2025-06-22 is 3 days.
func DayCount(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// HourCount converts an "HH:MM" window into hours, rounded to one decimal and
// floored at zero (crossing midnight is not modeled, it just yields zero).
func HourCount(startTime, endTime string) (float64, error) {
	s, err := time.Parse("15:04", startTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start time %q", startTime)
	}
	e, err := time.Parse("15:04", endTime)
	if err != nil {
		return 0, fmt.Errorf("invalid end time %q", endTime)
	}

	minutes := e.Sub(s).Minutes()
	if minutes <= 0 {
		return 0, nil
	}
	return math.Round(minutes/60*10) / 10, nil
}

// SubmitLeave creates a pending leave request. The day count is derived here,
// stored, and never recomputed on review.
func SubmitLeave(owner *models.User, leaveType string, start, end time.Time, reason string) (*models.LeaveRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	if end.Before(start) {
		return nil, ErrInvalidDates
	}

	req := &models.LeaveRequest{
		UserID:    owner.ID,
		LeaveType: leaveType,
		StartDate: start,
		EndDate:   end,
		Days:      DayCount(start, end),
		Reason:    reason,
		Status:    models.StatusPending,
	}
	if err := database.DB.Create(req).Error; err != nil {
		return nil, err
	}

	notifySubmitted(owner, "leave_request", req.ID,
		fmt.Sprintf("Leave request from %s", owner.Name),
		fmt.Sprintf("%s requested %d day(s) of %s leave (%s to %s): %s",
			owner.Name, req.Days, leaveType,
			start.Format("2006-01-02"), end.Format("2006-01-02"), reason))

	return req, nil
}

// SubmitOvertime creates a pending overtime request with the hour count
// derived once at submission.
func SubmitOvertime(owner *models.User, date time.Time, startTime, endTime, reason string) (*models.OvertimeRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	hours, err := HourCount(startTime, endTime)
	if err != nil {
		return nil, err
	}
	if hours <= 0 {
		return nil, ErrInvalidHours
	}

	req := &models.OvertimeRequest{
		UserID:    owner.ID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Hours:     hours,
		Reason:    reason,
		Status:    models.StatusPending,
	}
	if err := database.DB.Create(req).Error; err != nil {
		return nil, err
	}

	notifySubmitted(owner, "overtime_request", req.ID,
		fmt.Sprintf("Overtime request from %s", owner.Name),
		fmt.Sprintf("%s requested %.1f hour(s) of overtime on %s (%s-%s): %s",
			owner.Name, hours, date.Format("2006-01-02"), startTime, endTime, reason))

	return req, nil
}

// notifySubmitted picks the owner's manager (or any admin when the department
// has none) and fires a best-effort mail. Failures are logged by the
// notification package; nothing here can fail the submission.
func notifySubmitted(owner *models.User, kind string, relatedID uint, subject, body string) {
	s, err := settings.Get()
	if err == nil && (!s.NotificationsEnabled || !s.NotifyManager) {
		return
	}

	var recipient models.User
	q := database.DB.Where("role = ? AND active = ?", models.RoleManager, true)
	if owner.Department != nil {
		q = q.Where("department = ?", *owner.Department)
	}
	if err := q.First(&recipient).Error; err != nil {
		if err := database.DB.Where("role = ? AND active = ?", models.RoleAdmin, true).
			First(&recipient).Error; err != nil {
			return
		}
	}

	id := relatedID
	notification.SendAsync(notification.Payload{
		To:            recipient.Email,
		Subject:       subject,
		Body:          body,
		Type:          kind,
		RelatedID:     &id,
		RecipientName: recipient.Name,
		SenderName:    owner.Name,
	})
}

// ---------------------------------
// Listing
// ---------------------------------

func ListLeave(p scope.Principal, userID *uint, status *models.RequestStatus) ([]models.LeaveRequest, error) {
	q := database.DB.Model(&models.LeaveRequest{})
	q = p.VisibleOwned(database.DB, q, "user_id")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var reqs []models.LeaveRequest
	if err := q.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func ListOvertime(p scope.Principal, userID *uint, status *models.RequestStatus) ([]models.OvertimeRequest, error) {
	q := database.DB.Model(&models.OvertimeRequest{})
	q = p.VisibleOwned(database.DB, q, "user_id")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var reqs []models.OvertimeRequest
	if err := q.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// ---------------------------------
// Review transitions
// ---------------------------------

// ReviewLeave moves pending -> approved|rejected exactly once. The transition
// is a conditional UPDATE on status='pending', so a second review (or a lost
// race between two reviewers) surfaces as ErrAlreadyReviewed instead of
// silently overwriting reviewer fields.
func ReviewLeave(p scope.Principal, id uint, newStatus models.RequestStatus, comment string) (*models.LeaveRequest, error) {
	var req models.LeaveRequest
	if err := database.DB.Preload("User").First(&req, "id = ?", id).Error; err != nil {
		return nil, ErrNotFound
	}
	if !p.CanReview(&req.User) {
		return nil, scope.ErrForbidden
	}

	now := time.Now()
	res := database.DB.Model(&models.LeaveRequest{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":         newStatus,
			"reviewer_id":    p.UserID,
			"review_comment": comment,
			"reviewed_at":    now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyReviewed
	}

	if err := database.DB.First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func ReviewOvertime(p scope.Principal, id uint, newStatus models.RequestStatus, comment string) (*models.OvertimeRequest, error) {
	var req models.OvertimeRequest
	if err := database.DB.Preload("User").First(&req, "id = ?", id).Error; err != nil {
		return nil, ErrNotFound
	}
	if !p.CanReview(&req.User) {
		return nil, scope.ErrForbidden
	}

	now := time.Now()
	res := database.DB.Model(&models.OvertimeRequest{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":         newStatus,
			"reviewer_id":    p.UserID,
			"review_comment": comment,
			"reviewed_at":    now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyReviewed
	}

	if err := database.DB.First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}
