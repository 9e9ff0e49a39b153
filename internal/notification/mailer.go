package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"attendance-backend/internal/config"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
)

// The relay gets one POST per notification and answers {success, message?, error?}.
// Everything here is best-effort: a failed send is logged and forgotten, it
// never blocks or fails the workflow that triggered it.

var (
	relayURL string
	mailFrom string
	client   = &http.Client{Timeout: 30 * time.Second}
)

type Payload struct {
	To            string `json:"to"`
	From          string `json:"from"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	Type          string `json:"type"`
	RelatedID     *uint  `json:"related_id,omitempty"`
	RecipientName string `json:"recipient_name,omitempty"`
	SenderName    string `json:"sender_name,omitempty"`
}

type relayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Configure(cfg *config.Config) {
	relayURL = cfg.MailRelayURL
	mailFrom = cfg.MailFrom
}

// SendAsync fires the notification in the background and returns immediately.
func SendAsync(p Payload) {
	go func() {
		if err := Send(p); err != nil {
			log.Printf("notification to %s failed: %v", p.To, err)
		}
	}()
}

// Send delivers one notification and appends the audit row. Exposed mainly so
// tests can run the delivery path synchronously.
func Send(p Payload) error {
	if relayURL == "" {
		log.Printf("mail relay not configured, dropping notification to %s", p.To)
		return nil
	}
	if p.From == "" {
		p.From = mailFrom
	}

	err := deliver(p)

	entry := models.EmailLog{
		To:        p.To,
		Subject:   p.Subject,
		Type:      p.Type,
		RelatedID: p.RelatedID,
		Status:    models.EmailSent,
		SentAt:    time.Now(),
	}
	if err != nil {
		entry.Status = models.EmailFailed
		entry.ErrorMessage = err.Error()
	}
	if logErr := database.DB.Create(&entry).Error; logErr != nil {
		log.Printf("could not write email log: %v", logErr)
	}

	return err
}

func deliver(p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	resp, err := client.Post(relayURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	var rr relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("malformed relay response: %w", err)
	}
	if !rr.Success {
		if rr.Error != "" {
			return fmt.Errorf("relay rejected send: %s", rr.Error)
		}
		return fmt.Errorf("relay rejected send")
	}

	return nil
}
