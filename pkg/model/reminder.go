package model

import "time"

// Reminder kinds; the offset before the booking start each kind represents.
const (
	Reminder24h = "24h"
	Reminder2h  = "2h"
)

// ScheduledReminder is one future notification for a confirmed booking.
// Delivery is at-least-once; the sent flag is the only de-duplication gate.
type ScheduledReminder struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BookingID string     `json:"booking_id" bson:"booking_id" validate:"required,mongodb"`
	RemindAt  time.Time  `json:"remind_at" bson:"remind_at" validate:"required"`
	Kind      string     `json:"kind" bson:"kind" validate:"required,oneof=24h 2h"`
	Sent      bool       `json:"sent" bson:"sent"`
	SentAt    *time.Time `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}
