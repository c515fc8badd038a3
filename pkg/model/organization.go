package model

import "time"

type Organization struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name          string    `json:"name" bson:"name" validate:"required,min=2,max=255"`
	Timezone      string    `json:"timezone" bson:"timezone" validate:"required,timezone"`
	CalendarToken string    `json:"calendar_token,omitempty" bson:"calendar_token" validate:"omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// OrganizationAdmin links a user identity to an organization it may manage.
// Only authorization data lives here; authentication is an external concern.
type OrganizationAdmin struct {
	ID             string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID string `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	UserID         int64  `json:"user_id" bson:"user_id" validate:"required"`
	Role           string `json:"role" bson:"role" validate:"omitempty,max=64"`
}

type OrganizationUpdate struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Timezone string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}
