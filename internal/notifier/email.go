package notifier

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// EmailAlerter sends operator mail: error alerts when a URL keeps failing
// and periodic heartbeats confirming the tracker is alive.
type EmailAlerter struct {
	host     string
	port     int
	username string
	password string
	to       string
}

// NewEmailAlerter configures SMTP delivery with STARTTLS plain auth.
func NewEmailAlerter(host string, port int, username, password, to string) *EmailAlerter {
	return &EmailAlerter{host: host, port: port, username: username, password: password, to: to}
}

// AlertError implements OperatorAlerter. Fire-and-forget: a failed send
// is logged, never propagated.
func (e *EmailAlerter) AlertError(url string, alertErr error) {
	subject := "❌ Price Tracker Alert: Error Detected"
	body := fmt.Sprintf("Processing failed for %s:\n\n%v\n", url, alertErr)
	if err := e.send(subject, body); err != nil {
		log.Printf("Failed to send error alert: %v", err)
	}
}

// Heartbeat implements OperatorAlerter.
func (e *EmailAlerter) Heartbeat() error {
	subject := "✅ Price Tracker Status: Running"
	body := "The price tracking service is running normally.\n"
	return e.send(subject, body)
}

func (e *EmailAlerter) send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.username)
	fmt.Fprintf(&msg, "To: %s\r\n", e.to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(addr, auth, e.username, []string{e.to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", e.to, err)
	}
	return nil
}
