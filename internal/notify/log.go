package notify

import (
	"context"

	"bookline/pkg/logger"
	"bookline/pkg/model"
)

// LogNotifier writes reminders to the log. It is the fallback channel when
// neither SMTP nor Kafka is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, booking *model.Booking, kind string) error {
	n.log.Info("Reminder due",
		"booking_id", booking.ID,
		"organization_id", booking.OrganizationID,
		"kind", kind,
		"start_time", booking.StartTime,
		"client_name", booking.ClientName,
	)
	return nil
}
