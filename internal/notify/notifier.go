// Package notify delivers booking reminders over pluggable channels.
package notify

import (
	"context"

	"bookline/pkg/model"
)

// Notifier delivers one reminder for a booking. The kind is the reminder
// offset label, e.g. "24h" or "2h".
type Notifier interface {
	Notify(ctx context.Context, booking *model.Booking, kind string) error
}
