package attendance

import (
	"errors"
	"log"
	"math"
	"sort"
	"time"

	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/scope"

	"gorm.io/gorm"
)

var (
	ErrAlreadyClockedIn = errors.New("already clocked in")
	ErrNotClockedIn     = errors.New("not clocked in")
)

// DayWindow returns [midnight, next midnight) around t in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24 * time.Hour)
}

// Clock appends one event after re-deriving the day's latest event inside the
// same transaction. The alternation rule is enforced here, on the write path,
// so two tabs racing each other cannot produce clock_in twice in a row.
func Clock(userID uint, action models.ClockType, at time.Time) (*models.AttendanceEvent, error) {
	var event *models.AttendanceEvent

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Serialize clock actions per user. SQLite (tests) has a single
		// writer already, so the advisory lock is Postgres-only.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(userID)).Error; err != nil {
				return err
			}
		}

		start, end := DayWindow(at)

		var latest models.AttendanceEvent
		err := tx.Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, start, end).
			Order("timestamp DESC").
			First(&latest).Error
		haveLatest := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		switch action {
		case models.ClockIn:
			if haveLatest && latest.Type == models.ClockIn {
				return ErrAlreadyClockedIn
			}
		case models.ClockOut:
			if !haveLatest || latest.Type == models.ClockOut {
				return ErrNotClockedIn
			}
		}

		event = &models.AttendanceEvent{
			UserID:    userID,
			Type:      action,
			Timestamp: at,
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// TodayEvents lists the caller's events for the given local day, newest first.
// It degrades to an empty list on read failure so the clock screen stays
// usable; callers must not read an empty result as a guarantee of no events.
func TodayEvents(userID uint, day time.Time) []models.AttendanceEvent {
	start, end := DayWindow(day)

	var events []models.AttendanceEvent
	err := database.DB.
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, start, end).
		Order("timestamp DESC").
		Find(&events).Error
	if err != nil {
		log.Printf("today attendance query degraded for user %d: %v", userID, err)
		return []models.AttendanceEvent{}
	}
	return events
}

// Records lists events visible to the principal, newest first, optionally
// narrowed to one user and a timestamp range.
func Records(p scope.Principal, userID *uint, start, end *time.Time) ([]models.AttendanceEvent, error) {
	q := database.DB.Model(&models.AttendanceEvent{})
	q = p.VisibleOwned(database.DB, q, "user_id")

	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if start != nil {
		q = q.Where("timestamp >= ?", *start)
	}
	if end != nil {
		q = q.Where("timestamp < ?", *end)
	}

	var events []models.AttendanceEvent
	if err := q.Order("timestamp DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

type UserReport struct {
	UserID      uint    `json:"user_id"`
	UserName    string  `json:"user_name"`
	DaysPresent int     `json:"days_present"`
	TotalHours  float64 `json:"total_hours"`
}

// Report pairs each user's in/out events chronologically and sums the worked
// durations per the derivation rule: an in followed by the next out closes an
// interval, a dangling in contributes nothing.
func Report(p scope.Principal, userID *uint, start, end time.Time) ([]UserReport, error) {
	events, err := Records(p, userID, &start, &end)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uint][]models.AttendanceEvent)
	for _, e := range events {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}

	ids := make([]uint, 0, len(byUser))
	for id := range byUser {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make(map[uint]string)
	if len(ids) > 0 {
		var users []models.User
		if err := database.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	reports := make([]UserReport, 0, len(ids))
	for _, id := range ids {
		evs := byUser[id]
		// Records is newest-first, pairing wants chronological order.
		sort.Slice(evs, func(i, j int) bool { return evs[i].Timestamp.Before(evs[j].Timestamp) })

		var total time.Duration
		days := make(map[string]bool)
		var openIn *time.Time

		for _, e := range evs {
			switch e.Type {
			case models.ClockIn:
				t := e.Timestamp
				openIn = &t
				days[t.Format("2006-01-02")] = true
			case models.ClockOut:
				if openIn != nil {
					total += e.Timestamp.Sub(*openIn)
					openIn = nil
				}
			}
		}

		hours := total.Minutes() / 60
		reports = append(reports, UserReport{
			UserID:      id,
			UserName:    names[id],
			DaysPresent: len(days),
			TotalHours:  math.Round(hours*10) / 10,
		})
	}

	return reports, nil
}
