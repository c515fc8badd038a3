package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	availerrors "bookline/internal/availability/errors"
	"bookline/internal/availability/repository"
	"bookline/internal/availability/validator"
	srverrors "bookline/internal/services/errors"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

// ServiceSource resolves bookable services without binding the engine to
// the catalog repository implementation.
type ServiceSource interface {
	FindByID(ctx context.Context, id string) (*model.Service, error)
}

// OccupancySource lists bookings that block slots in a window.
type OccupancySource interface {
	FindActiveInRange(ctx context.Context, organizationID string, from, to time.Time) ([]*model.Booking, error)
}

type AvailabilityService interface {
	CreateRule(ctx context.Context, rule *model.AvailabilityRule) (*model.AvailabilityRule, error)
	ListRules(ctx context.Context, organizationID string) ([]*model.AvailabilityRule, error)
	DeleteRule(ctx context.Context, id string) error
	CreateBlackout(ctx context.Context, blackout *model.BlackoutDate) (*model.BlackoutDate, error)
	ListBlackouts(ctx context.Context, organizationID string, from, to time.Time) ([]*model.BlackoutDate, error)
	DeleteBlackout(ctx context.Context, id string) error
	FreeSlots(ctx context.Context, org *model.Organization, serviceID string, date string) ([]time.Time, error)
}

type availabilityService struct {
	rules     repository.RuleRepository
	blackouts repository.BlackoutRepository
	services  ServiceSource
	occupancy OccupancySource
	validator *validator.RuleValidator
	logger    *logger.Logger
	now       func() time.Time
}

func NewAvailabilityService(
	rules repository.RuleRepository,
	blackouts repository.BlackoutRepository,
	services ServiceSource,
	occupancy OccupancySource,
	v *validator.RuleValidator,
	log *logger.Logger,
) AvailabilityService {
	return &availabilityService{
		rules:     rules,
		blackouts: blackouts,
		services:  services,
		occupancy: occupancy,
		validator: v,
		logger:    log,
		now:       time.Now,
	}
}

func (s *availabilityService) CreateRule(ctx context.Context, rule *model.AvailabilityRule) (*model.AvailabilityRule, error) {
	if err := s.validator.ValidateRule(rule); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		s.logger.Error("Failed to create availability rule", "organization_id", rule.OrganizationID, "error", err)
		return nil, apperrors.Internal("Failed to create availability rule", err)
	}

	return rule, nil
}

func (s *availabilityService) ListRules(ctx context.Context, organizationID string) ([]*model.AvailabilityRule, error) {
	rules, err := s.rules.FindByOrganization(ctx, organizationID)
	if err != nil {
		s.logger.Error("Failed to list availability rules", "organization_id", organizationID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability rules", err)
	}
	return rules, nil
}

func (s *availabilityService) DeleteRule(ctx context.Context, id string) error {
	if err := s.rules.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, availerrors.ErrRuleNotFound):
			return apperrors.NotFoundWithID("availability rule", id)
		case errors.Is(err, availerrors.ErrInvalidID):
			return apperrors.InvalidInput(fmt.Sprintf("invalid availability rule id: %s", id))
		default:
			s.logger.Error("Failed to delete availability rule", "rule_id", id, "error", err)
			return apperrors.Internal("Failed to delete availability rule", err)
		}
	}
	return nil
}

func (s *availabilityService) CreateBlackout(ctx context.Context, blackout *model.BlackoutDate) (*model.BlackoutDate, error) {
	if err := s.validator.ValidateBlackout(blackout); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	if err := s.blackouts.Create(ctx, blackout); err != nil {
		s.logger.Error("Failed to create blackout date", "organization_id", blackout.OrganizationID, "error", err)
		return nil, apperrors.Internal("Failed to create blackout date", err)
	}

	return blackout, nil
}

func (s *availabilityService) ListBlackouts(ctx context.Context, organizationID string, from, to time.Time) ([]*model.BlackoutDate, error) {
	blackouts, err := s.blackouts.FindInRange(ctx, organizationID, from, to)
	if err != nil {
		s.logger.Error("Failed to list blackout dates", "organization_id", organizationID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve blackout dates", err)
	}
	return blackouts, nil
}

func (s *availabilityService) DeleteBlackout(ctx context.Context, id string) error {
	if err := s.blackouts.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, availerrors.ErrBlackoutNotFound):
			return apperrors.NotFoundWithID("blackout date", id)
		case errors.Is(err, availerrors.ErrInvalidID):
			return apperrors.InvalidInput(fmt.Sprintf("invalid blackout date id: %s", id))
		default:
			s.logger.Error("Failed to delete blackout date", "blackout_id", id, "error", err)
			return apperrors.Internal("Failed to delete blackout date", err)
		}
	}
	return nil
}

// FreeSlots computes bookable start times for one service on one calendar
// date, interpreted in the organization's timezone. A missing, foreign or
// deactivated service yields an empty result rather than an error so that
// clients can render "nothing available" uniformly.
func (s *availabilityService) FreeSlots(ctx context.Context, org *model.Organization, serviceID string, date string) ([]time.Time, error) {
	loc, err := time.LoadLocation(org.Timezone)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid organization timezone: %s", org.Timezone))
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid date, expected YYYY-MM-DD: %s", date))
	}

	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, srverrors.ErrNotFound) || errors.Is(err, srverrors.ErrInvalidID) {
			return []time.Time{}, nil
		}
		s.logger.Error("Failed to resolve service for slot computation", "service_id", serviceID, "error", err)
		return nil, apperrors.Internal("Failed to resolve service", err)
	}
	if svc.OrganizationID != org.ID || !svc.IsActive {
		return []time.Time{}, nil
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	duration := time.Duration(svc.DurationMinutes) * time.Minute

	rules, err := s.rules.FindByOrganization(ctx, org.ID)
	if err != nil {
		s.logger.Error("Failed to load availability rules", "organization_id", org.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability rules", err)
	}

	weekday := int(dayStart.Weekday())
	candidates := make([]time.Time, 0)

	for _, rule := range rules {
		if rule.Weekday != weekday {
			continue
		}

		startH, startM, err := parseClock(rule.StartTime)
		if err != nil {
			s.logger.Warn("Skipping rule with malformed start time", "rule_id", rule.ID, "start_time", rule.StartTime)
			continue
		}
		endH, endM, err := parseClock(rule.EndTime)
		if err != nil {
			s.logger.Warn("Skipping rule with malformed end time", "rule_id", rule.ID, "end_time", rule.EndTime)
			continue
		}

		step := time.Duration(rule.SlotStepMinutes) * time.Minute
		if step <= 0 {
			continue
		}

		windowStart := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, loc)
		windowEnd := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, loc)

		// A slot whose end lands exactly on the window end still fits.
		for t := windowStart; !t.Add(duration).After(windowEnd); t = t.Add(step) {
			candidates = append(candidates, t)
		}
	}

	if len(candidates) == 0 {
		return candidates, nil
	}

	blackouts, err := s.blackouts.FindInRange(ctx, org.ID, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("Failed to load blackout dates", "organization_id", org.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve blackout dates", err)
	}

	occupied, err := s.occupancy.FindActiveInRange(ctx, org.ID, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("Failed to load occupied bookings", "organization_id", org.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve occupied bookings", err)
	}

	now := s.now()
	slots := make([]time.Time, 0, len(candidates))

	for _, cand := range candidates {
		if cand.Before(now) {
			continue
		}

		candEnd := cand.Add(duration)
		blocked := false

		for _, bd := range blackouts {
			if cand.Before(bd.EndTime) && candEnd.After(bd.StartTime) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		for _, b := range occupied {
			if cand.Before(b.EndTime) && candEnd.After(b.StartTime) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		slots = append(slots, cand)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })

	return slots, nil
}

func parseClock(raw string) (int, int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
