package model

// Service is a bookable offering of an organization. Inactive services never
// appear in availability computation.
type Service struct {
	ID              string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID  string `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	Name            string `json:"name" bson:"name" validate:"required,min=2,max=255"`
	DurationMinutes int    `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=5,max=480"`
	Price           *int64 `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,min=0"`
	IsActive        bool   `json:"is_active" bson:"is_active"`
}
