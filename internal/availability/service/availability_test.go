package service

import (
	"context"
	"testing"
	"time"

	"bookline/internal/availability/validator"
	srverrors "bookline/internal/services/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

type mockRuleRepository struct {
	createFunc     func(ctx context.Context, rule *model.AvailabilityRule) error
	findByOrgFunc  func(ctx context.Context, organizationID string) ([]*model.AvailabilityRule, error)
	deleteFunc     func(ctx context.Context, id string) error
}

func (m *mockRuleRepository) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepository) FindByOrganization(ctx context.Context, organizationID string) ([]*model.AvailabilityRule, error) {
	if m.findByOrgFunc != nil {
		return m.findByOrgFunc(ctx, organizationID)
	}
	return []*model.AvailabilityRule{}, nil
}

func (m *mockRuleRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockBlackoutRepository struct {
	createFunc      func(ctx context.Context, blackout *model.BlackoutDate) error
	findInRangeFunc func(ctx context.Context, organizationID string, from, to time.Time) ([]*model.BlackoutDate, error)
	deleteFunc      func(ctx context.Context, id string) error
}

func (m *mockBlackoutRepository) Create(ctx context.Context, blackout *model.BlackoutDate) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, blackout)
	}
	return nil
}

func (m *mockBlackoutRepository) FindInRange(ctx context.Context, organizationID string, from, to time.Time) ([]*model.BlackoutDate, error) {
	if m.findInRangeFunc != nil {
		return m.findInRangeFunc(ctx, organizationID, from, to)
	}
	return []*model.BlackoutDate{}, nil
}

func (m *mockBlackoutRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
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

type mockOccupancySource struct {
	findActiveInRangeFunc func(ctx context.Context, organizationID string, from, to time.Time) ([]*model.Booking, error)
}

func (m *mockOccupancySource) FindActiveInRange(ctx context.Context, organizationID string, from, to time.Time) ([]*model.Booking, error) {
	if m.findActiveInRangeFunc != nil {
		return m.findActiveInRangeFunc(ctx, organizationID, from, to)
	}
	return []*model.Booking{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

// 2026-09-07 is a Monday.
const testDate = "2026-09-07"

func newTestService(rules *mockRuleRepository, blackouts *mockBlackoutRepository, services *mockServiceSource, occupancy *mockOccupancySource) *availabilityService {
	log := testLogger()
	return &availabilityService{
		rules:     rules,
		blackouts: blackouts,
		services:  services,
		occupancy: occupancy,
		validator: validator.NewRuleValidator(log),
		logger:    log,
		now:       func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func testOrg() *model.Organization {
	return &model.Organization{ID: "org-1", Name: "Test Org", Timezone: "UTC"}
}

func activeService() *mockServiceSource {
	return &mockServiceSource{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return &model.Service{
				ID:              "svc-1",
				OrganizationID:  "org-1",
				Name:            "Consultation",
				DurationMinutes: 60,
				IsActive:        true,
			}, nil
		},
	}
}

func mondayMorningRules() *mockRuleRepository {
	return &mockRuleRepository{
		findByOrgFunc: func(ctx context.Context, organizationID string) ([]*model.AvailabilityRule, error) {
			return []*model.AvailabilityRule{
				{ID: "r1", OrganizationID: "org-1", Weekday: 1, StartTime: "09:00", EndTime: "12:00", SlotStepMinutes: 30},
			}, nil
		},
	}
}

func TestFreeSlots_GeneratesCandidatesFromRule(t *testing.T) {
	svc := newTestService(mondayMorningRules(), &mockBlackoutRepository{}, activeService(), &mockOccupancySource{})

	slots, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"09:00", "09:30", "10:00", "10:30", "11:00"}
	if len(slots) != len(expected) {
		t.Fatalf("expected %d slots, got %d: %v", len(expected), len(slots), slots)
	}
	for i, want := range expected {
		if got := slots[i].Format("15:04"); got != want {
			t.Errorf("slot %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestFreeSlots_ExcludesOverlappingBookings(t *testing.T) {
	occupancy := &mockOccupancySource{
		findActiveInRangeFunc: func(ctx context.Context, organizationID string, from, to time.Time) ([]*model.Booking, error) {
			return []*model.Booking{
				{
					ID:        "b1",
					StartTime: time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
					EndTime:   time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
					Status:    model.BookingConfirmed,
				},
			}, nil
		},
	}

	svc := newTestService(mondayMorningRules(), &mockBlackoutRepository{}, activeService(), occupancy)

	slots, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"09:00", "11:00"}
	if len(slots) != len(expected) {
		t.Fatalf("expected %d slots, got %d: %v", len(expected), len(slots), slots)
	}
	for i, want := range expected {
		if got := slots[i].Format("15:04"); got != want {
			t.Errorf("slot %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestFreeSlots_ExcludesBlackoutWindows(t *testing.T) {
	blackouts := &mockBlackoutRepository{
		findInRangeFunc: func(ctx context.Context, organizationID string, from, to time.Time) ([]*model.BlackoutDate, error) {
			return []*model.BlackoutDate{
				{
					ID:        "bd1",
					StartTime: time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
					EndTime:   time.Date(2026, 9, 7, 10, 30, 0, 0, time.UTC),
					Reason:    "maintenance",
				},
			}, nil
		},
	}

	svc := newTestService(mondayMorningRules(), blackouts, activeService(), &mockOccupancySource{})

	slots, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"10:30", "11:00"}
	if len(slots) != len(expected) {
		t.Fatalf("expected %d slots, got %d: %v", len(expected), len(slots), slots)
	}
	for i, want := range expected {
		if got := slots[i].Format("15:04"); got != want {
			t.Errorf("slot %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestFreeSlots_DropsCandidatesInThePast(t *testing.T) {
	svc := newTestService(mondayMorningRules(), &mockBlackoutRepository{}, activeService(), &mockOccupancySource{})
	svc.now = func() time.Time { return time.Date(2026, 9, 7, 10, 15, 0, 0, time.UTC) }

	slots, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"10:30", "11:00"}
	if len(slots) != len(expected) {
		t.Fatalf("expected %d slots, got %d: %v", len(expected), len(slots), slots)
	}
	for i, want := range expected {
		if got := slots[i].Format("15:04"); got != want {
			t.Errorf("slot %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestFreeSlots_OverlappingRulesKeepDuplicates(t *testing.T) {
	rules := &mockRuleRepository{
		findByOrgFunc: func(ctx context.Context, organizationID string) ([]*model.AvailabilityRule, error) {
			return []*model.AvailabilityRule{
				{ID: "r1", OrganizationID: "org-1", Weekday: 1, StartTime: "09:00", EndTime: "11:00", SlotStepMinutes: 60},
				{ID: "r2", OrganizationID: "org-1", Weekday: 1, StartTime: "09:00", EndTime: "11:00", SlotStepMinutes: 60},
			}, nil
		},
	}

	svc := newTestService(rules, &mockBlackoutRepository{}, activeService(), &mockOccupancySource{})

	slots, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Each rule contributes 09:00 and 10:00 independently.
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d: %v", len(slots), slots)
	}
	if !slots[0].Equal(slots[1]) || !slots[2].Equal(slots[3]) {
		t.Errorf("expected duplicated slots to sort adjacently: %v", slots)
	}
}

func TestFreeSlots_InactiveServiceYieldsEmpty(t *testing.T) {
	services := &mockServiceSource{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return &model.Service{
				ID:              "svc-1",
				OrganizationID:  "org-1",
				DurationMinutes: 60,
				IsActive:        false,
			}, nil
		},
	}

	svc := newTestService(mondayMorningRules(), &mockBlackoutRepository{}, services, &mockOccupancySource{})

	slots, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots for inactive service, got %v", slots)
	}
}

func TestFreeSlots_ForeignServiceYieldsEmpty(t *testing.T) {
	services := &mockServiceSource{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return &model.Service{
				ID:              "svc-2",
				OrganizationID:  "org-other",
				DurationMinutes: 60,
				IsActive:        true,
			}, nil
		},
	}

	svc := newTestService(mondayMorningRules(), &mockBlackoutRepository{}, services, &mockOccupancySource{})

	slots, err := svc.FreeSlots(context.Background(), testOrg(), "svc-2", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots for foreign service, got %v", slots)
	}
}

func TestFreeSlots_UnknownServiceYieldsEmpty(t *testing.T) {
	svc := newTestService(mondayMorningRules(), &mockBlackoutRepository{}, &mockServiceSource{}, &mockOccupancySource{})

	slots, err := svc.FreeSlots(context.Background(), testOrg(), "missing", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots for unknown service, got %v", slots)
	}
}

func TestFreeSlots_SlotEndingOnWindowEndIsIncluded(t *testing.T) {
	rules := &mockRuleRepository{
		findByOrgFunc: func(ctx context.Context, organizationID string) ([]*model.AvailabilityRule, error) {
			return []*model.AvailabilityRule{
				{ID: "r1", OrganizationID: "org-1", Weekday: 1, StartTime: "09:00", EndTime: "10:00", SlotStepMinutes: 30},
			}, nil
		},
	}

	svc := newTestService(rules, &mockBlackoutRepository{}, activeService(), &mockOccupancySource{})

	slots, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected exactly the 09:00 slot, got %v", slots)
	}
	if got := slots[0].Format("15:04"); got != "09:00" {
		t.Errorf("expected 09:00, got %s", got)
	}
}

func TestFreeSlots_IsIdempotent(t *testing.T) {
	svc := newTestService(mondayMorningRules(), &mockBlackoutRepository{}, activeService(), &mockOccupancySource{})

	first, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("expected identical results, got %d and %d slots", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("slot %d differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestFreeSlots_InvalidDateRejected(t *testing.T) {
	svc := newTestService(mondayMorningRules(), &mockBlackoutRepository{}, activeService(), &mockOccupancySource{})

	if _, err := svc.FreeSlots(context.Background(), testOrg(), "svc-1", "07.09.2026"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestCreateRule_RejectsInvertedWindow(t *testing.T) {
	svc := newTestService(&mockRuleRepository{}, &mockBlackoutRepository{}, activeService(), &mockOccupancySource{})

	_, err := svc.CreateRule(context.Background(), &model.AvailabilityRule{
		OrganizationID:  "org-1",
		Weekday:         1,
		StartTime:       "12:00",
		EndTime:         "09:00",
		SlotStepMinutes: 30,
	})
	if err == nil {
		t.Fatal("expected validation error for inverted time window")
	}
}
