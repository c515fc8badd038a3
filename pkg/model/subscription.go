package model

import "time"

const (
	PlanBasic = "BASIC"
	PlanPro   = "PRO"
)

const (
	SubscriptionActive   = "ACTIVE"
	SubscriptionPastDue  = "PAST_DUE"
	SubscriptionCanceled = "CANCELED"
)

// Subscription is the entitlement record of an organization; at most one
// exists per organization. Entitlement holds while the status is ACTIVE and
// the billing period has not ended.
type Subscription struct {
	ID                 string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OrganizationID     string    `json:"organization_id" bson:"organization_id" validate:"required,mongodb"`
	Plan               string    `json:"plan" bson:"plan" validate:"required,oneof=BASIC PRO"`
	Status             string    `json:"status" bson:"status" validate:"required,oneof=ACTIVE PAST_DUE CANCELED"`
	CurrentPeriodStart time.Time `json:"current_period_start" bson:"current_period_start" validate:"required"`
	CurrentPeriodEnd   time.Time `json:"current_period_end" bson:"current_period_end" validate:"required,gtfield=CurrentPeriodStart"`
}

// IsEntitledAt reports entitlement at the given instant. Both sides of the
// comparison are taken in UTC so the check does not depend on the tenant zone.
func (s *Subscription) IsEntitledAt(now time.Time) bool {
	return s.Status == SubscriptionActive && now.UTC().Before(s.CurrentPeriodEnd.UTC())
}
