package attendance

import (
	"errors"
	"testing"
	"time"

	"attendance-backend/internal/models"
	"attendance-backend/internal/scope"
	"attendance-backend/internal/testutil"
)

func principalFor(u *models.User) scope.Principal {
	return scope.Principal{UserID: u.ID, Role: u.Role, Department: u.Department}
}

func at(day string, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestClockAlternation(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee, nil)

	// clocking out before ever clocking in is rejected
	if _, err := Clock(user.ID, models.ClockOut, at("2025-06-10", "18:00")); !errors.Is(err, ErrNotClockedIn) {
		t.Fatalf("clock-out with no prior event: got %v, want ErrNotClockedIn", err)
	}

	if _, err := Clock(user.ID, models.ClockIn, at("2025-06-10", "09:00")); err != nil {
		t.Fatalf("first clock-in: %v", err)
	}

	// a second clock-in the same day is rejected on the write path
	if _, err := Clock(user.ID, models.ClockIn, at("2025-06-10", "09:05")); !errors.Is(err, ErrAlreadyClockedIn) {
		t.Fatalf("double clock-in: got %v, want ErrAlreadyClockedIn", err)
	}

	if _, err := Clock(user.ID, models.ClockOut, at("2025-06-10", "17:30")); err != nil {
		t.Fatalf("clock-out: %v", err)
	}

	if _, err := Clock(user.ID, models.ClockOut, at("2025-06-10", "17:35")); !errors.Is(err, ErrNotClockedIn) {
		t.Fatalf("double clock-out: got %v, want ErrNotClockedIn", err)
	}

	// after the out, a fresh in is legal again
	if _, err := Clock(user.ID, models.ClockIn, at("2025-06-10", "19:00")); err != nil {
		t.Fatalf("re-entry clock-in: %v", err)
	}
}

func TestClockDayBoundary(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee, nil)

	// a dangling clock-in from yesterday does not block today
	if _, err := Clock(user.ID, models.ClockIn, at("2025-06-09", "09:00")); err != nil {
		t.Fatalf("yesterday clock-in: %v", err)
	}
	if _, err := Clock(user.ID, models.ClockIn, at("2025-06-10", "09:00")); err != nil {
		t.Fatalf("today clock-in after dangling yesterday: %v", err)
	}
}

func TestTodayEvents(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee, nil)
	other := testutil.CreateUser(t, db, "Dan", "dan@example.com", models.RoleEmployee, nil)

	day := at("2025-06-10", "00:00")
	mustClock := func(uid uint, typ models.ClockType, ts time.Time) {
		t.Helper()
		if _, err := Clock(uid, typ, ts); err != nil {
			t.Fatalf("clock: %v", err)
		}
	}

	mustClock(user.ID, models.ClockIn, at("2025-06-10", "09:00"))
	mustClock(user.ID, models.ClockOut, at("2025-06-10", "12:00"))
	mustClock(user.ID, models.ClockIn, at("2025-06-09", "09:00")) // previous day
	mustClock(other.ID, models.ClockIn, at("2025-06-10", "10:00"))

	events := TodayEvents(user.ID, day)
	if len(events) != 2 {
		t.Fatalf("got %d events for the day, want 2", len(events))
	}
	// newest first
	if events[0].Type != models.ClockOut || events[1].Type != models.ClockIn {
		t.Errorf("events not ordered newest-first: %v, %v", events[0].Type, events[1].Type)
	}
}

func TestRecordsScoping(t *testing.T) {
	db := testutil.SetupDB(t)
	eve := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee, testutil.StrPtr("Sales"))
	dan := testutil.CreateUser(t, db, "Dan", "dan@example.com", models.RoleEmployee, testutil.StrPtr("Support"))
	salesMgr := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleManager, testutil.StrPtr("Sales"))
	admin := testutil.CreateUser(t, db, "Root", "root@example.com", models.RoleAdmin, nil)

	if _, err := Clock(eve.ID, models.ClockIn, at("2025-06-10", "09:00")); err != nil {
		t.Fatal(err)
	}
	if _, err := Clock(dan.ID, models.ClockIn, at("2025-06-10", "09:30")); err != nil {
		t.Fatal(err)
	}

	got, err := Records(principalFor(eve), nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].UserID != eve.ID {
		t.Errorf("employee sees %d events, want only their own", len(got))
	}

	got, err = Records(principalFor(salesMgr), nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].UserID != eve.ID {
		t.Errorf("manager sees %d events, want the Sales one only", len(got))
	}

	got, err = Records(principalFor(admin), nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("admin sees %d events, want 2", len(got))
	}

	// explicit user filter outside the caller's scope yields nothing
	got, err = Records(principalFor(eve), &dan.ID, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("employee filtered another user's events: %d", len(got))
	}
}

func TestRecordsDateRange(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee, nil)

	days := []string{"2025-06-08", "2025-06-09", "2025-06-10"}
	for _, d := range days {
		if _, err := Clock(user.ID, models.ClockIn, at(d, "09:00")); err != nil {
			t.Fatal(err)
		}
		if _, err := Clock(user.ID, models.ClockOut, at(d, "17:00")); err != nil {
			t.Fatal(err)
		}
	}

	start := at("2025-06-09", "00:00")
	end := at("2025-06-10", "00:00")
	got, err := Records(principalFor(user), nil, &start, &end)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("range query returned %d events, want 2", len(got))
	}
	for _, e := range got {
		if e.Timestamp.Format("2006-01-02") != "2025-06-09" {
			t.Errorf("event outside range: %v", e.Timestamp)
		}
	}
}

func TestReport(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee, nil)
	admin := testutil.CreateUser(t, db, "Root", "root@example.com", models.RoleAdmin, nil)

	// 3h morning + 4h afternoon, one day
	seq := []struct {
		typ models.ClockType
		ts  time.Time
	}{
		{models.ClockIn, at("2025-06-10", "09:00")},
		{models.ClockOut, at("2025-06-10", "12:00")},
		{models.ClockIn, at("2025-06-10", "13:00")},
		{models.ClockOut, at("2025-06-10", "17:00")},
	}
	for _, s := range seq {
		if _, err := Clock(user.ID, s.typ, s.ts); err != nil {
			t.Fatal(err)
		}
	}
	// second day, dangling clock-in contributes no hours but counts as present
	if _, err := Clock(user.ID, models.ClockIn, at("2025-06-11", "09:00")); err != nil {
		t.Fatal(err)
	}

	reports, err := Report(principalFor(admin), &user.ID, at("2025-06-10", "00:00"), at("2025-06-12", "00:00"))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d report rows, want 1", len(reports))
	}

	r := reports[0]
	if r.UserID != user.ID || r.UserName != "Eve" {
		t.Errorf("report row identity wrong: %+v", r)
	}
	if r.DaysPresent != 2 {
		t.Errorf("days present = %d, want 2", r.DaysPresent)
	}
	if r.TotalHours != 7.0 {
		t.Errorf("total hours = %v, want 7.0", r.TotalHours)
	}
}

func TestDayWindow(t *testing.T) {
	ts := at("2025-06-10", "15:30")
	start, end := DayWindow(ts)
	if start.Hour() != 0 || start.Day() != 10 {
		t.Errorf("window start = %v", start)
	}
	if end.Sub(start) != 24*time.Hour {
		t.Errorf("window span = %v", end.Sub(start))
	}
}
