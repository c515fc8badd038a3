package service

import (
	"context"
	"errors"

	svcerrors "bookline/internal/services/errors"
	"bookline/internal/services/repository"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/model"
	"bookline/pkg/sanitizer"
)

// CatalogService manages the bookable offerings of an organization.
type CatalogService interface {
	Create(ctx context.Context, svc *model.Service) error
	GetByID(ctx context.Context, id string) (*model.Service, error)
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]*model.Service, error)
	SetActive(ctx context.Context, id string, isActive bool) error
}

type catalogService struct {
	repo repository.ServiceRepository
	cfg  *config.Config
}

func NewCatalogService(repo repository.ServiceRepository, cfg *config.Config) CatalogService {
	return &catalogService{repo: repo, cfg: cfg}
}

func (s *catalogService) Create(ctx context.Context, svc *model.Service) error {
	svc.Name = sanitizer.NormalizeName(svc.Name)
	if svc.Name == "" {
		return apperrors.InvalidInput("Service name cannot be empty")
	}
	if svc.OrganizationID == "" {
		return apperrors.InvalidInput("Service must belong to an organization")
	}
	if svc.DurationMinutes <= 0 {
		return apperrors.InvalidInput("Service duration must be positive")
	}
	svc.IsActive = true

	if err := s.repo.Create(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service", "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created",
		"id", svc.ID,
		"organization_id", svc.OrganizationID,
		"duration_minutes", svc.DurationMinutes,
	)
	return nil
}

func (s *catalogService) GetByID(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, svcerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, svcerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}

	return svc, nil
}

func (s *catalogService) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]*model.Service, error) {
	if organizationID == "" {
		return nil, apperrors.InvalidInput("Organization ID cannot be empty")
	}

	services, err := s.repo.FindByOrganization(ctx, organizationID, activeOnly)
	if err != nil {
		s.cfg.Log.Error("Failed to list services", "organization_id", organizationID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}

	return services, nil
}

func (s *catalogService) SetActive(ctx context.Context, id string, isActive bool) error {
	if id == "" {
		return apperrors.InvalidInput("Service ID cannot be empty")
	}

	if err := s.repo.SetActive(ctx, id, isActive); err != nil {
		if errors.Is(err, svcerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, svcerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid service ID format")
		}
		return apperrors.Internal("Failed to update service", err)
	}

	s.cfg.Log.Info("Service active flag updated", "id", id, "is_active", isActive)
	return nil
}
