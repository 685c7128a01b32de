package notifier

import (
	"context"
	"fmt"
	"log"
)

// LogNotifier writes product alerts to the process log. Used when no
// Telegram credentials are configured, and in dry runs.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n Notification) error {
	price := "n/d"
	if n.Price != nil {
		price = fmt.Sprintf("%.2f", *n.Price)
	}
	log.Printf("NOTIFY [%s] %s - %s€ (%s) %s", n.Source, n.Title, price, n.Reason, n.URL)
	return nil
}

// LogAlerter writes operator signals to the process log. Used when no
// SMTP settings are configured.
type LogAlerter struct{}

func (LogAlerter) AlertError(url string, err error) {
	log.Printf("ALERT processing failed for %s: %v", url, err)
}

func (LogAlerter) Heartbeat() error {
	log.Println("HEARTBEAT tracker running")
	return nil
}
