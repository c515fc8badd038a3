package service

import (
	"context"
	"testing"
	"time"

	bookingerrors "bookline/internal/bookings/errors"
	"bookline/internal/bookings/repository"
	"bookline/internal/bookings/validator"
	srverrors "bookline/internal/services/errors"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

type mockBookingRepository struct {
	createFunc            func(ctx context.Context, booking *model.Booking) error
	findByIDFunc          func(ctx context.Context, id string) (*model.Booking, error)
	updateStatusFunc      func(ctx context.Context, id string, fromStatus, toStatus string) (bool, error)
	cancelActiveFunc      func(ctx context.Context, id string) (bool, error)
	findPendingFunc       func(ctx context.Context, organizationID string) ([]*model.Booking, error)
	findUpcomingFunc      func(ctx context.Context, organizationID string, clientUserID int64, from time.Time) ([]*model.Booking, error)
	statsFunc             func(ctx context.Context, organizationID string, since time.Time) (repository.StatusCounts, error)
	findActiveInRangeFunc func(ctx context.Context, organizationID string, from, to time.Time) ([]*model.Booking, error)
	findActiveFromFunc    func(ctx context.Context, organizationID string, from time.Time) ([]*model.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "64b0c1d2e3f4a5b6c7d8e9f0"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingerrors.ErrNotFound
}

func (m *mockBookingRepository) FindActiveInRange(ctx context.Context, organizationID string, from, to time.Time) ([]*model.Booking, error) {
	if m.findActiveInRangeFunc != nil {
		return m.findActiveInRangeFunc(ctx, organizationID, from, to)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindPendingByOrganization(ctx context.Context, organizationID string) ([]*model.Booking, error) {
	if m.findPendingFunc != nil {
		return m.findPendingFunc(ctx, organizationID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindActiveFrom(ctx context.Context, organizationID string, from time.Time) ([]*model.Booking, error) {
	if m.findActiveFromFunc != nil {
		return m.findActiveFromFunc(ctx, organizationID, from)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindConfirmedFrom(ctx context.Context, from time.Time) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindUpcomingByClient(ctx context.Context, organizationID string, clientUserID int64, from time.Time) ([]*model.Booking, error) {
	if m.findUpcomingFunc != nil {
		return m.findUpcomingFunc(ctx, organizationID, clientUserID, from)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, fromStatus, toStatus string) (bool, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, fromStatus, toStatus)
	}
	return true, nil
}

func (m *mockBookingRepository) CancelActive(ctx context.Context, id string) (bool, error) {
	if m.cancelActiveFunc != nil {
		return m.cancelActiveFunc(ctx, id)
	}
	return true, nil
}

func (m *mockBookingRepository) Stats(ctx context.Context, organizationID string, since time.Time) (repository.StatusCounts, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx, organizationID, since)
	}
	return repository.StatusCounts{}, nil
}

type mockGate struct {
	isEntitledFunc func(ctx context.Context, organizationID string) (bool, error)
}

func (m *mockGate) IsEntitled(ctx context.Context, organizationID string) (bool, error) {
	if m.isEntitledFunc != nil {
		return m.isEntitledFunc(ctx, organizationID)
	}
	return true, nil
}

type mockAdminChecker struct {
	isAdminFunc func(ctx context.Context, organizationID string, userID int64) (bool, error)
}

func (m *mockAdminChecker) IsAdmin(ctx context.Context, organizationID string, userID int64) (bool, error) {
	if m.isAdminFunc != nil {
		return m.isAdminFunc(ctx, organizationID, userID)
	}
	return true, nil
}

type mockServiceSource struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Service, error)
}

func (m *mockServiceSource) FindByID(ctx context.Context, id string) (*model.Service, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, srverrors.ErrNotFound
}

type mockReminderPlanner struct {
	scheduleFunc func(ctx context.Context, booking *model.Booking) error
	calls        int
}

func (m *mockReminderPlanner) ScheduleForBooking(ctx context.Context, booking *model.Booking) error {
	m.calls++
	if m.scheduleFunc != nil {
		return m.scheduleFunc(ctx, booking)
	}
	return nil
}

type mockEventPublisher struct {
	events []string
}

func (m *mockEventPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error {
	m.events = append(m.events, eventType)
	return nil
}

var bookingTestNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *mockBookingRepository
	gate      *mockGate
	admins    *mockAdminChecker
	services  *mockServiceSource
	reminders *mockReminderPlanner
	events    *mockEventPublisher
	svc       *bookingService
}

func newFixture() *fixture {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})

	f := &fixture{
		repo: &mockBookingRepository{},
		gate: &mockGate{},
		admins: &mockAdminChecker{},
		services: &mockServiceSource{
			findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
				return &model.Service{
					ID:              "64a0c1d2e3f4a5b6c7d8e9f1",
					OrganizationID:  "64a0c1d2e3f4a5b6c7d8e9f2",
					Name:            "Consultation",
					DurationMinutes: 60,
					IsActive:        true,
				}, nil
			},
		},
		reminders: &mockReminderPlanner{},
		events:    &mockEventPublisher{},
	}

	f.svc = &bookingService{
		repo:      f.repo,
		gate:      f.gate,
		admins:    f.admins,
		services:  f.services,
		reminders: f.reminders,
		events:    f.events,
		validator: validator.NewBookingValidator(log),
		logger:    log,
		now:       func() time.Time { return bookingTestNow },
	}

	return f
}

func validInput() *CreateBookingInput {
	return &CreateBookingInput{
		OrganizationID: "64a0c1d2e3f4a5b6c7d8e9f2",
		ServiceID:      "64a0c1d2e3f4a5b6c7d8e9f1",
		ClientUserID:   1001,
		StartTime:      time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
		ClientName:     "  Aziza Karimova ",
		ClientPhone:    "+998 90 123 45 67",
	}
}

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:             "64b0c1d2e3f4a5b6c7d8e9f0",
		OrganizationID: "64a0c1d2e3f4a5b6c7d8e9f2",
		ServiceID:      "64a0c1d2e3f4a5b6c7d8e9f1",
		ClientUserID:   1001,
		StartTime:      time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
		Status:         model.BookingPending,
		ClientName:     "Aziza Karimova",
	}
}

func TestCreate_Succeeds(t *testing.T) {
	f := newFixture()

	booking, err := f.svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.BookingPending {
		t.Errorf("expected PENDING status, got %s", booking.Status)
	}
	if want := time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC); !booking.EndTime.Equal(want) {
		t.Errorf("expected end time %v from service duration, got %v", want, booking.EndTime)
	}
	if booking.ClientName != "Aziza Karimova" {
		t.Errorf("expected trimmed client name, got %q", booking.ClientName)
	}
	if booking.ClientPhone != "+998901234567" {
		t.Errorf("expected normalized phone, got %q", booking.ClientPhone)
	}
	if len(f.events.events) != 1 || f.events.events[0] != EventBookingCreated {
		t.Errorf("expected one %s event, got %v", EventBookingCreated, f.events.events)
	}
}

func TestCreate_NotEntitled(t *testing.T) {
	f := newFixture()
	f.gate.isEntitledFunc = func(ctx context.Context, organizationID string) (bool, error) {
		return false, nil
	}

	_, err := f.svc.Create(context.Background(), validInput())
	if !apperrors.IsCode(err, apperrors.CodeNotEntitled) {
		t.Fatalf("expected NOT_ENTITLED error, got %v", err)
	}
}

func TestCreate_InactiveService(t *testing.T) {
	f := newFixture()
	f.services.findByIDFunc = func(ctx context.Context, id string) (*model.Service, error) {
		return &model.Service{
			ID:              "64a0c1d2e3f4a5b6c7d8e9f1",
			OrganizationID:  "64a0c1d2e3f4a5b6c7d8e9f2",
			DurationMinutes: 60,
			IsActive:        false,
		}, nil
	}

	_, err := f.svc.Create(context.Background(), validInput())
	if !apperrors.IsCode(err, apperrors.CodeInactiveResource) {
		t.Fatalf("expected INACTIVE_RESOURCE error, got %v", err)
	}
}

func TestCreate_ForeignServiceNotFound(t *testing.T) {
	f := newFixture()
	f.services.findByIDFunc = func(ctx context.Context, id string) (*model.Service, error) {
		return &model.Service{
			ID:              "64a0c1d2e3f4a5b6c7d8e9f1",
			OrganizationID:  "64a0c1d2e3f4a5b6c7d8e9ff",
			DurationMinutes: 60,
			IsActive:        true,
		}, nil
	}

	_, err := f.svc.Create(context.Background(), validInput())
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND error for foreign service, got %v", err)
	}
}

func TestCreate_SlotTakenMapsToConflict(t *testing.T) {
	f := newFixture()
	f.repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
		return bookingerrors.ErrSlotTaken
	}

	_, err := f.svc.Create(context.Background(), validInput())
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT error, got %v", err)
	}
}

func TestConfirm_SchedulesReminders(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return pendingBooking(), nil
	}

	booking, err := f.svc.Confirm(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.BookingConfirmed {
		t.Errorf("expected CONFIRMED status, got %s", booking.Status)
	}
	if f.reminders.calls != 1 {
		t.Errorf("expected reminder scheduling to run once, got %d", f.reminders.calls)
	}
	if len(f.events.events) != 1 || f.events.events[0] != EventBookingConfirmed {
		t.Errorf("expected one %s event, got %v", EventBookingConfirmed, f.events.events)
	}
}

func TestConfirm_DoesNotRecheckEntitlement(t *testing.T) {
	f := newFixture()
	f.gate.isEntitledFunc = func(ctx context.Context, organizationID string) (bool, error) {
		return false, nil
	}
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return pendingBooking(), nil
	}

	if _, err := f.svc.Confirm(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 42); err != nil {
		t.Fatalf("expected confirmation to succeed without entitlement, got %v", err)
	}
}

func TestConfirm_NonAdminUnauthorized(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	f.admins.isAdminFunc = func(ctx context.Context, organizationID string, userID int64) (bool, error) {
		return false, nil
	}

	_, err := f.svc.Confirm(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 42)
	if !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED error, got %v", err)
	}
	if f.reminders.calls != 0 {
		t.Error("expected no reminder scheduling for unauthorized confirm")
	}
}

func TestConfirm_NonPendingInvalidTransition(t *testing.T) {
	for _, status := range []string{model.BookingConfirmed, model.BookingCanceled} {
		f := newFixture()
		f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
			b := pendingBooking()
			b.Status = status
			return b, nil
		}

		_, err := f.svc.Confirm(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 42)
		if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
			t.Errorf("status %s: expected INVALID_TRANSITION error, got %v", status, err)
		}
	}
}

func TestConfirm_LostRaceInvalidTransition(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	f.repo.updateStatusFunc = func(ctx context.Context, id string, fromStatus, toStatus string) (bool, error) {
		return false, nil
	}

	_, err := f.svc.Confirm(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 42)
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("expected INVALID_TRANSITION when the compare-and-set loses, got %v", err)
	}
	if f.reminders.calls != 0 {
		t.Error("expected no reminder scheduling when the transition lost")
	}
}

func TestConfirm_ReminderFailureDoesNotFailConfirm(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	f.reminders.scheduleFunc = func(ctx context.Context, booking *model.Booking) error {
		return context.DeadlineExceeded
	}

	booking, err := f.svc.Confirm(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.BookingConfirmed {
		t.Errorf("expected CONFIRMED status, got %s", booking.Status)
	}
}

func TestReject_PendingOnly(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		b := pendingBooking()
		b.Status = model.BookingConfirmed
		return b, nil
	}

	_, err := f.svc.Reject(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 42)
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("expected INVALID_TRANSITION error, got %v", err)
	}
}

func TestCancel_ByOwningClient(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		b := pendingBooking()
		b.Status = model.BookingConfirmed
		return b, nil
	}

	booking, err := f.svc.Cancel(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.BookingCanceled {
		t.Errorf("expected CANCELED status, got %s", booking.Status)
	}
	if len(f.events.events) != 1 || f.events.events[0] != EventBookingCanceled {
		t.Errorf("expected one %s event, got %v", EventBookingCanceled, f.events.events)
	}
}

func TestCancel_ForeignClientUnauthorized(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return pendingBooking(), nil
	}

	_, err := f.svc.Cancel(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 9999)
	if !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED error, got %v", err)
	}
}

func TestCancel_AlreadyCanceled(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		b := pendingBooking()
		b.Status = model.BookingCanceled
		return b, nil
	}

	_, err := f.svc.Cancel(context.Background(), "64b0c1d2e3f4a5b6c7d8e9f0", 1001)
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("expected INVALID_TRANSITION error, got %v", err)
	}
}

func TestStats_SumsStatusCounts(t *testing.T) {
	f := newFixture()
	f.repo.statsFunc = func(ctx context.Context, organizationID string, since time.Time) (repository.StatusCounts, error) {
		if want := bookingTestNow.Add(-statsWindow); !since.Equal(want) {
			t.Errorf("expected stats window starting %v, got %v", want, since)
		}
		return repository.StatusCounts{
			model.BookingPending:   2,
			model.BookingConfirmed: 5,
			model.BookingCanceled:  1,
		}, nil
	}

	stats, err := f.svc.Stats(context.Background(), "64a0c1d2e3f4a5b6c7d8e9f2", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 8 {
		t.Errorf("expected total 8, got %d", stats.Total)
	}
	if stats.Confirmed != 5 {
		t.Errorf("expected 5 confirmed, got %d", stats.Confirmed)
	}
}
