// Package notifier delivers the tracker's outbound signals: product
// alerts to a Telegram channel, operational alerts and liveness
// heartbeats to an operator mailbox. Delivery failures are the caller's
// to log; they never block persistence or the next URL.
package notifier

import (
	"context"

	"PriceTracker/internal/models"
)

// Notification is one human-facing product alert.
type Notification struct {
	Title    string
	ImageURL string
	Price    *float64
	URL      string
	Source   string
	Reason   models.Reason
}

// Notifier delivers product alerts.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// OperatorAlerter delivers operational signals. AlertError is
// fire-and-forget; Heartbeat confirms the process is alive.
type OperatorAlerter interface {
	AlertError(url string, err error)
	Heartbeat() error
}
