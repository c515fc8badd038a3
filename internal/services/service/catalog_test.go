package service

import (
	"context"
	"testing"

	svcerrors "bookline/internal/services/errors"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

type mockServiceRepository struct {
	createFunc    func(ctx context.Context, svc *model.Service) error
	findByIDFunc  func(ctx context.Context, id string) (*model.Service, error)
	findByOrgFunc func(ctx context.Context, organizationID string, activeOnly bool) ([]*model.Service, error)
	setActiveFunc func(ctx context.Context, id string, isActive bool) error
}

func (m *mockServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, svc)
	}
	svc.ID = "64a0c1d2e3f4a5b6c7d8e9f3"
	return nil
}

func (m *mockServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, svcerrors.ErrNotFound
}

func (m *mockServiceRepository) FindByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]*model.Service, error) {
	if m.findByOrgFunc != nil {
		return m.findByOrgFunc(ctx, organizationID, activeOnly)
	}
	return []*model.Service{}, nil
}

func (m *mockServiceRepository) SetActive(ctx context.Context, id string, isActive bool) error {
	if m.setActiveFunc != nil {
		return m.setActiveFunc(ctx, id, isActive)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func TestCreate_NormalizesAndActivates(t *testing.T) {
	var created *model.Service
	repo := &mockServiceRepository{
		createFunc: func(ctx context.Context, svc *model.Service) error {
			created = svc
			return nil
		},
	}

	svc := NewCatalogService(repo, testConfig())

	err := svc.Create(context.Background(), &model.Service{
		OrganizationID:  "64a0c1d2e3f4a5b6c7d8e9f2",
		Name:            "  Deep   Tissue Massage ",
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Name != "Deep Tissue Massage" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
	if !created.IsActive {
		t.Error("expected new service to be active")
	}
}

func TestCreate_RejectsBadInput(t *testing.T) {
	svc := NewCatalogService(&mockServiceRepository{}, testConfig())

	cases := []struct {
		name    string
		service *model.Service
	}{
		{"empty name", &model.Service{OrganizationID: "64a0c1d2e3f4a5b6c7d8e9f2", Name: "  ", DurationMinutes: 30}},
		{"missing organization", &model.Service{Name: "Haircut", DurationMinutes: 30}},
		{"zero duration", &model.Service{OrganizationID: "64a0c1d2e3f4a5b6c7d8e9f2", Name: "Haircut", DurationMinutes: 0}},
		{"negative duration", &model.Service{OrganizationID: "64a0c1d2e3f4a5b6c7d8e9f2", Name: "Haircut", DurationMinutes: -15}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Create(context.Background(), tc.service)
			if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT error, got %v", err)
			}
		})
	}
}

func TestGetByID_MapsRepositoryErrors(t *testing.T) {
	repo := &mockServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			if id == "bad" {
				return nil, svcerrors.ErrInvalidID
			}
			return nil, svcerrors.ErrNotFound
		},
	}

	svc := NewCatalogService(repo, testConfig())

	_, err := svc.GetByID(context.Background(), "64a0c1d2e3f4a5b6c7d8e9f3")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND error, got %v", err)
	}

	_, err = svc.GetByID(context.Background(), "bad")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT error, got %v", err)
	}
}

func TestSetActive_MissingServiceNotFound(t *testing.T) {
	repo := &mockServiceRepository{
		setActiveFunc: func(ctx context.Context, id string, isActive bool) error {
			return svcerrors.ErrNotFound
		},
	}

	svc := NewCatalogService(repo, testConfig())

	err := svc.SetActive(context.Background(), "64a0c1d2e3f4a5b6c7d8e9f3", false)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND error, got %v", err)
	}
}

func TestListByOrganization_ForwardsActiveFilter(t *testing.T) {
	var gotActiveOnly bool
	repo := &mockServiceRepository{
		findByOrgFunc: func(ctx context.Context, organizationID string, activeOnly bool) ([]*model.Service, error) {
			gotActiveOnly = activeOnly
			return []*model.Service{{ID: "64a0c1d2e3f4a5b6c7d8e9f3", Name: "Haircut"}}, nil
		},
	}

	svc := NewCatalogService(repo, testConfig())

	services, err := svc.ListByOrganization(context.Background(), "64a0c1d2e3f4a5b6c7d8e9f2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(services) != 1 {
		t.Fatalf("expected 1 service, got %d", len(services))
	}
	if !gotActiveOnly {
		t.Error("expected active-only filter to be forwarded")
	}
}
