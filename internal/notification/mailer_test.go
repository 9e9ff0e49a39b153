package notification

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"attendance-backend/internal/config"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/testutil"
)

func configureRelay(t *testing.T, url string) {
	t.Helper()
	Configure(&config.Config{MailRelayURL: url, MailFrom: "noreply@example.com"})
	t.Cleanup(func() { Configure(&config.Config{}) })
}

func lastLog(t *testing.T) models.EmailLog {
	t.Helper()
	var entry models.EmailLog
	if err := database.DB.Order("id DESC").First(&entry).Error; err != nil {
		t.Fatalf("no email log written: %v", err)
	}
	return entry
}

func TestSendSuccessIsLogged(t *testing.T) {
	testutil.SetupDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "message": "queued"}`))
	}))
	defer srv.Close()
	configureRelay(t, srv.URL)

	id := uint(42)
	err := Send(Payload{
		To:        "manager@example.com",
		Subject:   "Leave request from Eve",
		Type:      "leave_request",
		RelatedID: &id,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	entry := lastLog(t)
	if entry.Status != models.EmailSent {
		t.Errorf("status = %s, want sent", entry.Status)
	}
	if entry.RelatedID == nil || *entry.RelatedID != 42 {
		t.Errorf("related id not persisted")
	}
	if entry.ErrorMessage != "" {
		t.Errorf("unexpected error message: %q", entry.ErrorMessage)
	}
}

func TestSendFailureIsLoggedNotSwallowedSilently(t *testing.T) {
	testutil.SetupDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	configureRelay(t, srv.URL)

	err := Send(Payload{To: "manager@example.com", Subject: "x", Type: "overtime_request"})
	if err == nil {
		t.Fatal("expected error from failing relay")
	}

	entry := lastLog(t)
	if entry.Status != models.EmailFailed {
		t.Errorf("status = %s, want failed", entry.Status)
	}
	if entry.ErrorMessage == "" {
		t.Error("failure must record an error message")
	}
}

func TestSendRelayRejection(t *testing.T) {
	testutil.SetupDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "mailbox unavailable"}`))
	}))
	defer srv.Close()
	configureRelay(t, srv.URL)

	if err := Send(Payload{To: "x@example.com", Subject: "x", Type: "leave_request"}); err == nil {
		t.Fatal("expected error when relay reports success=false")
	}

	entry := lastLog(t)
	if entry.Status != models.EmailFailed {
		t.Errorf("status = %s, want failed", entry.Status)
	}
}

func TestSendWithoutRelayConfigured(t *testing.T) {
	db := testutil.SetupDB(t)
	Configure(&config.Config{})

	if err := Send(Payload{To: "x@example.com", Subject: "x"}); err != nil {
		t.Fatalf("unconfigured relay must be a no-op, got %v", err)
	}

	var count int64
	db.Model(&models.EmailLog{}).Count(&count)
	if count != 0 {
		t.Errorf("no-op send wrote %d log rows", count)
	}
}
