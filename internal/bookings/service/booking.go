package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "bookline/internal/bookings/errors"
	"bookline/internal/bookings/repository"
	"bookline/internal/bookings/validator"
	srverrors "bookline/internal/services/errors"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
	"bookline/pkg/sanitizer"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCanceled  = "booking.canceled"
)

// EntitlementGate answers whether an organization may accept new bookings.
type EntitlementGate interface {
	IsEntitled(ctx context.Context, organizationID string) (bool, error)
}

// AdminChecker answers whether a user administers an organization.
type AdminChecker interface {
	IsAdmin(ctx context.Context, organizationID string, userID int64) (bool, error)
}

// ServiceSource resolves bookable services.
type ServiceSource interface {
	FindByID(ctx context.Context, id string) (*model.Service, error)
}

// ReminderPlanner schedules reminders once a booking is confirmed.
type ReminderPlanner interface {
	ScheduleForBooking(ctx context.Context, booking *model.Booking) error
}

// EventPublisher emits booking lifecycle events. May be nil when event
// publishing is disabled.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error
}

type CreateBookingInput struct {
	OrganizationID string
	ServiceID      string
	ClientUserID   int64
	StartTime      time.Time
	ClientName     string
	ClientPhone    string
}

// BookingStats is a rolling activity summary for one organization.
type BookingStats struct {
	Since     time.Time `json:"since"`
	Total     int64     `json:"total"`
	Pending   int64     `json:"pending"`
	Confirmed int64     `json:"confirmed"`
	Canceled  int64     `json:"canceled"`
}

type BookingService interface {
	Create(ctx context.Context, input *CreateBookingInput) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Confirm(ctx context.Context, id string, adminUserID int64) (*model.Booking, error)
	Reject(ctx context.Context, id string, adminUserID int64) (*model.Booking, error)
	Cancel(ctx context.Context, id string, clientUserID int64) (*model.Booking, error)
	ListPending(ctx context.Context, organizationID string, adminUserID int64) ([]*model.Booking, error)
	ListUpcomingForClient(ctx context.Context, organizationID string, clientUserID int64) ([]*model.Booking, error)
	Stats(ctx context.Context, organizationID string, adminUserID int64) (*BookingStats, error)
}

const statsWindow = 7 * 24 * time.Hour

type bookingService struct {
	repo      repository.BookingRepository
	gate      EntitlementGate
	admins    AdminChecker
	services  ServiceSource
	reminders ReminderPlanner
	events    EventPublisher
	validator *validator.BookingValidator
	logger    *logger.Logger
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	gate EntitlementGate,
	admins AdminChecker,
	services ServiceSource,
	reminders ReminderPlanner,
	events EventPublisher,
	v *validator.BookingValidator,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		gate:      gate,
		admins:    admins,
		services:  services,
		reminders: reminders,
		events:    events,
		validator: v,
		logger:    log,
		now:       time.Now,
	}
}

// Create records a PENDING booking for an entitled organization. Slot
// collision is decided by the storage layer at insert time, so two clients
// racing for the same start time cannot both succeed.
func (s *bookingService) Create(ctx context.Context, input *CreateBookingInput) (*model.Booking, error) {
	entitled, err := s.gate.IsEntitled(ctx, input.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !entitled {
		return nil, apperrors.NotEntitled("organization has no active subscription")
	}

	svc, err := s.services.FindByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, srverrors.ErrNotFound) || errors.Is(err, srverrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("service", input.ServiceID)
		}
		s.logger.Error("Failed to resolve service", "service_id", input.ServiceID, "error", err)
		return nil, apperrors.Internal("Failed to resolve service", err)
	}
	if svc.OrganizationID != input.OrganizationID {
		return nil, apperrors.NotFoundWithID("service", input.ServiceID)
	}
	if !svc.IsActive {
		return nil, apperrors.InactiveResource("service")
	}

	now := s.now().UTC()
	booking := &model.Booking{
		OrganizationID: input.OrganizationID,
		ServiceID:      input.ServiceID,
		ClientUserID:   input.ClientUserID,
		StartTime:      input.StartTime.UTC(),
		EndTime:        input.StartTime.UTC().Add(time.Duration(svc.DurationMinutes) * time.Minute),
		Status:         model.BookingPending,
		ClientName:     sanitizer.NormalizeName(input.ClientName),
		ClientPhone:    sanitizer.NormalizePhone(input.ClientPhone),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.validator.Validate(booking); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingerrors.ErrSlotTaken) {
			return nil, apperrors.Conflict("slot is already booked")
		}
		s.logger.Error("Failed to create booking", "organization_id", input.OrganizationID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.publish(ctx, EventBookingCreated, booking)

	s.logger.Info("Booking created",
		"booking_id", booking.ID,
		"organization_id", booking.OrganizationID,
		"start_time", booking.StartTime,
	)

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return booking, nil
}

// Confirm moves a PENDING booking to CONFIRMED on behalf of an organization
// admin. Entitlement is not re-checked here: the slot was reserved under an
// entitled subscription and confirmation only finalizes it.
func (s *bookingService) Confirm(ctx context.Context, id string, adminUserID int64) (*model.Booking, error) {
	booking, err := s.authorizeAdmin(ctx, id, adminUserID)
	if err != nil {
		return nil, err
	}

	if booking.Status != model.BookingPending {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("cannot confirm booking in status %s", booking.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.BookingPending, model.BookingConfirmed)
	if err != nil {
		s.logger.Error("Failed to confirm booking", "booking_id", id, "error", err)
		return nil, apperrors.Internal("Failed to confirm booking", err)
	}
	if !updated {
		return nil, apperrors.InvalidTransition("booking is no longer pending")
	}

	booking.Status = model.BookingConfirmed
	booking.UpdatedAt = s.now().UTC()

	// Reminder scheduling failures must not undo the confirmation; the
	// rebuild pass in the reminder worker picks up the gap.
	if err := s.reminders.ScheduleForBooking(ctx, booking); err != nil {
		s.logger.Error("Failed to schedule reminders for confirmed booking", "booking_id", id, "error", err)
	}

	s.publish(ctx, EventBookingConfirmed, booking)

	return booking, nil
}

func (s *bookingService) Reject(ctx context.Context, id string, adminUserID int64) (*model.Booking, error) {
	booking, err := s.authorizeAdmin(ctx, id, adminUserID)
	if err != nil {
		return nil, err
	}

	if booking.Status != model.BookingPending {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("cannot reject booking in status %s", booking.Status))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.BookingPending, model.BookingCanceled)
	if err != nil {
		s.logger.Error("Failed to reject booking", "booking_id", id, "error", err)
		return nil, apperrors.Internal("Failed to reject booking", err)
	}
	if !updated {
		return nil, apperrors.InvalidTransition("booking is no longer pending")
	}

	booking.Status = model.BookingCanceled
	booking.UpdatedAt = s.now().UTC()

	s.publish(ctx, EventBookingCanceled, booking)

	return booking, nil
}

// Cancel lets the client who created a booking withdraw it. Both PENDING
// and CONFIRMED bookings can be canceled; CANCELED is terminal.
func (s *bookingService) Cancel(ctx context.Context, id string, clientUserID int64) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if booking.ClientUserID != clientUserID {
		return nil, apperrors.Unauthorized("booking belongs to another client")
	}
	if booking.Status == model.BookingCanceled {
		return nil, apperrors.InvalidTransition("booking is already canceled")
	}

	updated, err := s.repo.CancelActive(ctx, id)
	if err != nil {
		s.logger.Error("Failed to cancel booking", "booking_id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}
	if !updated {
		return nil, apperrors.InvalidTransition("booking is already canceled")
	}

	booking.Status = model.BookingCanceled
	booking.UpdatedAt = s.now().UTC()

	s.publish(ctx, EventBookingCanceled, booking)

	return booking, nil
}

func (s *bookingService) ListPending(ctx context.Context, organizationID string, adminUserID int64) ([]*model.Booking, error) {
	if err := s.requireAdmin(ctx, organizationID, adminUserID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.FindPendingByOrganization(ctx, organizationID)
	if err != nil {
		s.logger.Error("Failed to list pending bookings", "organization_id", organizationID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve pending bookings", err)
	}

	return bookings, nil
}

func (s *bookingService) ListUpcomingForClient(ctx context.Context, organizationID string, clientUserID int64) ([]*model.Booking, error) {
	bookings, err := s.repo.FindUpcomingByClient(ctx, organizationID, clientUserID, s.now().UTC())
	if err != nil {
		s.logger.Error("Failed to list client bookings", "organization_id", organizationID, "client_user_id", clientUserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve client bookings", err)
	}

	return bookings, nil
}

func (s *bookingService) Stats(ctx context.Context, organizationID string, adminUserID int64) (*BookingStats, error) {
	if err := s.requireAdmin(ctx, organizationID, adminUserID); err != nil {
		return nil, err
	}

	since := s.now().UTC().Add(-statsWindow)
	counts, err := s.repo.Stats(ctx, organizationID, since)
	if err != nil {
		s.logger.Error("Failed to compute booking stats", "organization_id", organizationID, "error", err)
		return nil, apperrors.Internal("Failed to compute booking stats", err)
	}

	stats := &BookingStats{
		Since:     since,
		Pending:   counts[model.BookingPending],
		Confirmed: counts[model.BookingConfirmed],
		Canceled:  counts[model.BookingCanceled],
	}
	stats.Total = stats.Pending + stats.Confirmed + stats.Canceled

	return stats, nil
}

func (s *bookingService) authorizeAdmin(ctx context.Context, bookingID string, adminUserID int64) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, s.mapLookupError(err, bookingID)
	}

	if err := s.requireAdmin(ctx, booking.OrganizationID, adminUserID); err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *bookingService) requireAdmin(ctx context.Context, organizationID string, adminUserID int64) error {
	isAdmin, err := s.admins.IsAdmin(ctx, organizationID, adminUserID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return apperrors.Unauthorized("user is not an organization admin")
	}
	return nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBookingEvent(ctx, eventType, booking); err != nil {
		s.logger.Error("Failed to publish booking event", "event_type", eventType, "booking_id", booking.ID, "error", err)
	}
}

func (s *bookingService) mapLookupError(err error, id string) error {
	switch {
	case errors.Is(err, bookingerrors.ErrNotFound):
		return apperrors.NotFoundWithID("booking", id)
	case errors.Is(err, bookingerrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("invalid booking id: %s", id))
	default:
		s.logger.Error("Booking lookup failed", "booking_id", id, "error", err)
		return apperrors.Internal("Booking lookup failed", err)
	}
}
