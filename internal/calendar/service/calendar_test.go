package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"bookline/pkg/logger"
	"bookline/pkg/model"
)

type mockOrganizationSource struct {
	getByTokenFunc func(ctx context.Context, token string) (*model.Organization, error)
}

func (m *mockOrganizationSource) GetByCalendarToken(ctx context.Context, token string) (*model.Organization, error) {
	return m.getByTokenFunc(ctx, token)
}

type mockBookingFeed struct {
	findActiveFromFunc func(ctx context.Context, organizationID string, from time.Time) ([]*model.Booking, error)
}

func (m *mockBookingFeed) FindActiveFrom(ctx context.Context, organizationID string, from time.Time) ([]*model.Booking, error) {
	return m.findActiveFromFunc(ctx, organizationID, from)
}

var feedNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func TestBuildICS(t *testing.T) {
	org := &model.Organization{ID: "org-1", Name: "Salon; Uno, Ltd"}
	bookings := []*model.Booking{
		{
			ID:         "64b0c1d2e3f4a5b6c7d8e9f0",
			StartTime:  time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
			Status:     model.BookingConfirmed,
			ClientName: "Aziza Karimova",
		},
		{
			ID:         "64b0c1d2e3f4a5b6c7d8e9f1",
			StartTime:  time.Date(2026, 9, 8, 9, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2026, 9, 8, 9, 30, 0, 0, time.UTC),
			Status:     model.BookingPending,
			ClientName: "Bobur",
		},
		{
			ID:         "64b0c1d2e3f4a5b6c7d8e9f2",
			StartTime:  time.Date(2026, 9, 9, 9, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2026, 9, 9, 9, 30, 0, 0, time.UTC),
			Status:     model.BookingCanceled,
			ClientName: "Gone",
		},
	}

	ics := BuildICS(org, bookings, feedNow)

	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") {
		t.Error("expected calendar to start with BEGIN:VCALENDAR")
	}
	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("expected calendar to end with END:VCALENDAR")
	}
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("expected 2 events (canceled excluded), got %d", got)
	}
	if !strings.Contains(ics, "UID:booking-64b0c1d2e3f4a5b6c7d8e9f0@bookline\r\n") {
		t.Error("expected stable UID per booking")
	}
	if !strings.Contains(ics, "DTSTART:20260907T100000Z\r\n") {
		t.Error("expected UTC DTSTART for confirmed booking")
	}
	if !strings.Contains(ics, "X-WR-CALNAME:Salon\\; Uno\\, Ltd\r\n") {
		t.Error("expected calendar name with escaped separators")
	}
	if !strings.Contains(ics, "SUMMARY:Bobur (unconfirmed)\r\n") {
		t.Error("expected pending booking marked unconfirmed")
	}
	if strings.Contains(ics, "Gone") {
		t.Error("expected canceled booking to be excluded")
	}
}

func TestFeed_UsesTokenLookup(t *testing.T) {
	orgs := &mockOrganizationSource{
		getByTokenFunc: func(ctx context.Context, token string) (*model.Organization, error) {
			if token != "feed-token" {
				t.Errorf("expected token to be forwarded, got %q", token)
			}
			return &model.Organization{ID: "org-1", Name: "Test Org"}, nil
		},
	}
	feed := &mockBookingFeed{
		findActiveFromFunc: func(ctx context.Context, organizationID string, from time.Time) ([]*model.Booking, error) {
			if organizationID != "org-1" {
				t.Errorf("expected org-1, got %q", organizationID)
			}
			if !from.Before(feedNow) {
				t.Errorf("expected lookback window before now, got %v", from)
			}
			return []*model.Booking{}, nil
		},
	}

	svc := &calendarService{
		organizations: orgs,
		bookings:      feed,
		logger: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		now: func() time.Time { return feedNow },
	}

	ics, err := svc.Feed(context.Background(), "feed-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(ics, "X-WR-CALNAME:Test Org") {
		t.Error("expected organization name in calendar")
	}
}
