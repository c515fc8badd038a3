package model

import "time"

// Booking status machine: PENDING -> {CONFIRMED, CANCELED},
// CONFIRMED -> CANCELED. CANCELED is terminal.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCanceled  = "CANCELED"
)

// ActiveBookingStatuses are the statuses that hold a slot. The storage-level
// partial unique index on (organization_id, start_time) is scoped to them.
func ActiveBookingStatuses() []string {
	return []string{BookingPending, BookingConfirmed}
}

type Booking struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID string    `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	ServiceID      string    `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	ClientUserID   int64     `json:"client_user_id" bson:"client_user_id" validate:"required"`
	StartTime      time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status         string    `json:"status" bson:"status" validate:"required,oneof=PENDING CONFIRMED CANCELED"`
	ClientName     string    `json:"client_name" bson:"client_name" validate:"required,min=2,max=255"`
	ClientPhone    string    `json:"client_phone,omitempty" bson:"client_phone,omitempty" validate:"omitempty,e164"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// IsActive reports whether the booking currently holds its slot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
