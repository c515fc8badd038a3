package service

import (
	"context"
	"errors"
	"time"

	bookingerrors "bookline/internal/bookings/errors"
	"bookline/internal/notify"
	"bookline/internal/reminders/repository"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

// reminderOffsets maps reminder kinds to how long before the booking start
// each one fires.
var reminderOffsets = map[string]time.Duration{
	model.Reminder24h: 24 * time.Hour,
	model.Reminder2h:  2 * time.Hour,
}

// BookingSource gives the reminder pipeline read access to bookings.
type BookingSource interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindConfirmedFrom(ctx context.Context, from time.Time) ([]*model.Booking, error)
}

type ReminderService interface {
	// ScheduleForBooking creates the reminder fan-out for a confirmed
	// booking. Offsets that already lie in the past are skipped.
	ScheduleForBooking(ctx context.Context, booking *model.Booking) error
	// ProcessDue delivers reminders whose remind_at has passed and returns
	// the number delivered.
	ProcessDue(ctx context.Context) (int, error)
	// RebuildFutureReminders drops all unsent reminders and regenerates
	// them from confirmed future bookings. It returns the number created.
	RebuildFutureReminders(ctx context.Context) (int, error)
}

type reminderService struct {
	repo       repository.ReminderRepository
	bookings   BookingSource
	notifier   notify.Notifier
	batchLimit int
	logger     *logger.Logger
	now        func() time.Time
}

func NewReminderService(
	repo repository.ReminderRepository,
	bookings BookingSource,
	notifier notify.Notifier,
	batchLimit int,
	log *logger.Logger,
) ReminderService {
	return &reminderService{
		repo:       repo,
		bookings:   bookings,
		notifier:   notifier,
		batchLimit: batchLimit,
		logger:     log,
		now:        time.Now,
	}
}

func (s *reminderService) ScheduleForBooking(ctx context.Context, booking *model.Booking) error {
	if booking.Status != model.BookingConfirmed {
		return nil
	}
	_, err := s.scheduleOffsets(ctx, booking)
	return err
}

func (s *reminderService) scheduleOffsets(ctx context.Context, booking *model.Booking) (int, error) {
	now := s.now().UTC()
	created := 0

	for kind, offset := range reminderOffsets {
		remindAt := booking.StartTime.UTC().Add(-offset)
		if !remindAt.After(now) {
			continue
		}

		reminder := &model.ScheduledReminder{
			BookingID: booking.ID,
			RemindAt:  remindAt,
			Kind:      kind,
			Sent:      false,
			CreatedAt: now,
		}
		if err := s.repo.Create(ctx, reminder); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

func (s *reminderService) ProcessDue(ctx context.Context) (int, error) {
	now := s.now().UTC()

	due, err := s.repo.FindDue(ctx, now, s.batchLimit)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, reminder := range due {
		booking, err := s.bookings.FindByID(ctx, reminder.BookingID)
		if err != nil {
			if errors.Is(err, bookingerrors.ErrNotFound) || errors.Is(err, bookingerrors.ErrInvalidID) {
				// The booking is gone; retire the reminder.
				if _, err := s.repo.MarkSent(ctx, reminder.ID, now); err != nil {
					s.logger.Error("Failed to retire orphaned reminder", "reminder_id", reminder.ID, "error", err)
				}
				continue
			}
			s.logger.Error("Failed to load booking for reminder", "reminder_id", reminder.ID, "booking_id", reminder.BookingID, "error", err)
			continue
		}

		// A booking canceled after scheduling suppresses its reminders.
		if booking.Status != model.BookingConfirmed {
			if _, err := s.repo.MarkSent(ctx, reminder.ID, now); err != nil {
				s.logger.Error("Failed to suppress reminder", "reminder_id", reminder.ID, "error", err)
			}
			continue
		}

		if err := s.notifier.Notify(ctx, booking, reminder.Kind); err != nil {
			// Leave the reminder pending so the next pass retries it.
			s.logger.Error("Failed to deliver reminder", "reminder_id", reminder.ID, "booking_id", booking.ID, "error", err)
			continue
		}

		claimed, err := s.repo.MarkSent(ctx, reminder.ID, now)
		if err != nil {
			s.logger.Error("Failed to mark reminder sent", "reminder_id", reminder.ID, "error", err)
			continue
		}
		if claimed {
			delivered++
		}
	}

	if delivered > 0 {
		s.logger.Info("Delivered reminders", "count", delivered, "due", len(due))
	}

	return delivered, nil
}

func (s *reminderService) RebuildFutureReminders(ctx context.Context) (int, error) {
	dropped, err := s.repo.DeleteUnsent(ctx)
	if err != nil {
		return 0, err
	}

	bookings, err := s.bookings.FindConfirmedFrom(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}

	created := 0
	for _, booking := range bookings {
		n, err := s.scheduleOffsets(ctx, booking)
		created += n
		if err != nil {
			return created, err
		}
	}

	s.logger.Info("Rebuilt reminder schedule", "dropped", dropped, "created", created, "bookings", len(bookings))

	return created, nil
}
