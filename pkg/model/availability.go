package model

import "time"

// AvailabilityRule describes one recurring weekly window. Several rules may
// share a weekday (split morning/afternoon windows); each is expanded into
// candidate slots independently.
//
// Weekday follows time.Weekday numbering: Sunday = 0 through Saturday = 6.
type AvailabilityRule struct {
	ID              string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID  string `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	Weekday         int    `json:"weekday" bson:"weekday" validate:"min=0,max=6"`
	StartTime       string `json:"start_time" bson:"start_time" validate:"required,valid_clock_time"`
	EndTime         string `json:"end_time" bson:"end_time" validate:"required,valid_clock_time"`
	SlotStepMinutes int    `json:"slot_step_minutes" bson:"slot_step_minutes" validate:"required,min=5,max=240"`
}

// BlackoutDate is a closed time range during which no slots are offered.
type BlackoutDate struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID string    `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	StartTime      time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Reason         string    `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=255"`
}
