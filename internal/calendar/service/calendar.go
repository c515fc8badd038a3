package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

const (
	icsProdID   = "-//bookline//booking feed//EN"
	icsTimeSpec = "20060102T150405Z"
	// feedLookback keeps recently finished appointments visible in
	// subscribed calendars.
	feedLookback = 30 * 24 * time.Hour
)

// OrganizationSource resolves organizations by their calendar token.
type OrganizationSource interface {
	GetByCalendarToken(ctx context.Context, token string) (*model.Organization, error)
}

// BookingFeed lists the bookings that appear in the calendar.
type BookingFeed interface {
	FindActiveFrom(ctx context.Context, organizationID string, from time.Time) ([]*model.Booking, error)
}

type CalendarService interface {
	// Feed renders the iCalendar document for the organization owning the
	// token.
	Feed(ctx context.Context, token string) (string, error)
}

type calendarService struct {
	organizations OrganizationSource
	bookings      BookingFeed
	logger        *logger.Logger
	now           func() time.Time
}

func NewCalendarService(organizations OrganizationSource, bookings BookingFeed, log *logger.Logger) CalendarService {
	return &calendarService{
		organizations: organizations,
		bookings:      bookings,
		logger:        log,
		now:           time.Now,
	}
}

func (s *calendarService) Feed(ctx context.Context, token string) (string, error) {
	org, err := s.organizations.GetByCalendarToken(ctx, token)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	bookings, err := s.bookings.FindActiveFrom(ctx, org.ID, now.Add(-feedLookback))
	if err != nil {
		s.logger.Error("Failed to load bookings for calendar feed", "organization_id", org.ID, "error", err)
		return "", apperrors.Internal("Failed to build calendar feed", err)
	}

	return BuildICS(org, bookings, now), nil
}

// BuildICS renders an RFC 5545 calendar. Canceled bookings are excluded;
// they no longer hold their slot.
func BuildICS(org *model.Organization, bookings []*model.Booking, now time.Time) string {
	var b strings.Builder

	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+icsProdID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(org.Name))

	stamp := now.UTC().Format(icsTimeSpec)

	for _, booking := range bookings {
		if booking.Status == model.BookingCanceled {
			continue
		}

		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, fmt.Sprintf("UID:booking-%s@bookline", booking.ID))
		writeLine(&b, "DTSTAMP:"+stamp)
		writeLine(&b, "DTSTART:"+booking.StartTime.UTC().Format(icsTimeSpec))
		writeLine(&b, "DTEND:"+booking.EndTime.UTC().Format(icsTimeSpec))
		writeLine(&b, "SUMMARY:"+escapeText(summaryFor(booking)))
		writeLine(&b, "STATUS:"+eventStatus(booking.Status))
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")

	return b.String()
}

func summaryFor(booking *model.Booking) string {
	if booking.Status == model.BookingPending {
		return booking.ClientName + " (unconfirmed)"
	}
	return booking.ClientName
}

func eventStatus(status string) string {
	if status == model.BookingConfirmed {
		return "CONFIRMED"
	}
	return "TENTATIVE"
}

func escapeText(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(s)
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}
