package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	orgerrors "bookline/internal/organizations/errors"
	"bookline/internal/organizations/repository"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/model"
	"bookline/pkg/sanitizer"
)

type OrganizationService interface {
	Create(ctx context.Context, name, timezone string) (*model.Organization, error)
	GetByID(ctx context.Context, id string) (*model.Organization, error)
	GetByCalendarToken(ctx context.Context, token string) (*model.Organization, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Organization, error)
	Update(ctx context.Context, id string, updates *model.OrganizationUpdate) error
	Delete(ctx context.Context, id string) error
	AddAdmin(ctx context.Context, organizationID string, userID int64, role string) error
	IsAdmin(ctx context.Context, organizationID string, userID int64) (bool, error)
}

type organizationService struct {
	repo repository.OrganizationRepository
	cfg  *config.Config
}

func NewOrganizationService(repo repository.OrganizationRepository, cfg *config.Config) OrganizationService {
	return &organizationService{repo: repo, cfg: cfg}
}

func (s *organizationService) Create(ctx context.Context, name, timezone string) (*model.Organization, error) {
	name = sanitizer.NormalizeName(name)
	if name == "" {
		return nil, apperrors.InvalidInput("Organization name cannot be empty")
	}
	if timezone == "" {
		timezone = s.cfg.DefaultTimezone
	}

	org := &model.Organization{
		Name:          name,
		Timezone:      timezone,
		CalendarToken: newCalendarToken(),
	}

	if err := s.repo.Create(ctx, org); err != nil {
		if errors.Is(err, orgerrors.ErrTokenTaken) {
			// Random token collision; retry once with a fresh token.
			org.CalendarToken = newCalendarToken()
			if retryErr := s.repo.Create(ctx, org); retryErr != nil {
				return nil, apperrors.Internal("Failed to create organization", retryErr)
			}
		} else {
			s.cfg.Log.Error("Failed to create organization", "error", err)
			return nil, apperrors.Internal("Failed to create organization", err)
		}
	}

	s.cfg.Log.Info("Organization created", "id", org.ID, "name", org.Name, "timezone", org.Timezone)
	return org, nil
}

func (s *organizationService) GetByID(ctx context.Context, id string) (*model.Organization, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Organization ID cannot be empty")
	}

	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, id)
	}
	return org, nil
}

func (s *organizationService) GetByCalendarToken(ctx context.Context, token string) (*model.Organization, error) {
	if token == "" {
		return nil, apperrors.InvalidInput("Calendar token cannot be empty")
	}

	org, err := s.repo.FindByCalendarToken(ctx, token)
	if err != nil {
		if errors.Is(err, orgerrors.ErrNotFound) {
			return nil, apperrors.NotFound("Organization")
		}
		return nil, apperrors.Internal("Failed to retrieve organization", err)
	}
	return org, nil
}

func (s *organizationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Organization, error) {
	orgs, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list organizations", "error", err)
		return nil, apperrors.Internal("Failed to retrieve organizations", err)
	}
	return orgs, nil
}

func (s *organizationService) Update(ctx context.Context, id string, updates *model.OrganizationUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Organization ID cannot be empty")
	}
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return mapLookupError(err, id)
	}

	s.cfg.Log.Info("Organization updated", "id", id)
	return nil
}

func (s *organizationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Organization ID cannot be empty")
	}

	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return mapLookupError(err, id)
	}

	s.cfg.Log.Info("Organization deleted with all owned entities", "id", id)
	return nil
}

func (s *organizationService) AddAdmin(ctx context.Context, organizationID string, userID int64, role string) error {
	if _, err := s.GetByID(ctx, organizationID); err != nil {
		return err
	}
	if role == "" {
		role = "admin"
	}

	err := s.repo.AddAdmin(ctx, &model.OrganizationAdmin{
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           role,
	})
	if err != nil {
		return apperrors.Internal("Failed to add organization admin", err)
	}

	s.cfg.Log.Info("Organization admin added", "organization_id", organizationID, "user_id", userID, "role", role)
	return nil
}

func (s *organizationService) IsAdmin(ctx context.Context, organizationID string, userID int64) (bool, error) {
	ok, err := s.repo.IsAdmin(ctx, organizationID, userID)
	if err != nil {
		return false, apperrors.Internal("Failed to check organization admin", err)
	}
	return ok, nil
}

func newCalendarToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func mapLookupError(err error, id string) error {
	switch {
	case errors.Is(err, orgerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Organization", id)
	case errors.Is(err, orgerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid organization ID format")
	default:
		return apperrors.Internal("Organization lookup failed", err)
	}
}
