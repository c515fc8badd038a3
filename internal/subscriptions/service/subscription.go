package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	suberrors "bookline/internal/subscriptions/errors"
	"bookline/internal/subscriptions/repository"
	"bookline/pkg/config"
	apperrors "bookline/pkg/errors"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

type SubscriptionService interface {
	// IsEntitled reports whether an organization may accept new bookings.
	IsEntitled(ctx context.Context, organizationID string) (bool, error)
	Activate(ctx context.Context, organizationID string, plan string, days int) (*model.Subscription, error)
	Cancel(ctx context.Context, organizationID string) error
	Status(ctx context.Context, organizationID string) (*model.Subscription, error)
}

type subscriptionService struct {
	repo   repository.SubscriptionRepository
	cache  *expirable.LRU[string, bool]
	logger *logger.Logger
	now    func() time.Time
}

func NewSubscriptionService(repo repository.SubscriptionRepository, cfg *config.Config) SubscriptionService {
	return &subscriptionService{
		repo:   repo,
		cache:  expirable.NewLRU[string, bool](cfg.EntitlementCacheSize, nil, cfg.EntitlementCacheTTL),
		logger: cfg.Log,
		now:    time.Now,
	}
}

// IsEntitled consults a short-lived cache before the database. A cached
// positive answer can outlive the period end by at most the cache TTL,
// which is the accepted staleness window.
func (s *subscriptionService) IsEntitled(ctx context.Context, organizationID string) (bool, error) {
	if entitled, ok := s.cache.Get(organizationID); ok {
		return entitled, nil
	}

	sub, err := s.repo.FindByOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, suberrors.ErrNotFound) {
			s.cache.Add(organizationID, false)
			return false, nil
		}
		s.logger.Error("Failed to resolve entitlement", "organization_id", organizationID, "error", err)
		return false, apperrors.Internal("Failed to resolve entitlement", err)
	}

	entitled := sub.IsEntitledAt(s.now())
	s.cache.Add(organizationID, entitled)
	return entitled, nil
}

// Activate grants or extends the subscription of an organization for the
// given number of days. Activation is a manual back-office operation, so it
// replaces the billing period rather than appending to it.
func (s *subscriptionService) Activate(ctx context.Context, organizationID string, plan string, days int) (*model.Subscription, error) {
	if plan != model.PlanBasic && plan != model.PlanPro {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown plan: %s", plan))
	}
	if days <= 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("days must be positive, got: %d", days))
	}

	now := s.now().UTC()
	sub := &model.Subscription{
		OrganizationID:     organizationID,
		Plan:               plan,
		Status:             model.SubscriptionActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, days),
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		s.logger.Error("Failed to activate subscription", "organization_id", organizationID, "error", err)
		return nil, apperrors.Internal("Failed to activate subscription", err)
	}

	s.cache.Remove(organizationID)
	s.logger.Info("Subscription activated",
		"organization_id", organizationID,
		"plan", plan,
		"period_end", sub.CurrentPeriodEnd,
	)

	return sub, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, organizationID string) error {
	if err := s.repo.UpdateStatus(ctx, organizationID, model.SubscriptionCanceled); err != nil {
		if errors.Is(err, suberrors.ErrNotFound) {
			return apperrors.NotFoundWithID("subscription", organizationID)
		}
		s.logger.Error("Failed to cancel subscription", "organization_id", organizationID, "error", err)
		return apperrors.Internal("Failed to cancel subscription", err)
	}

	s.cache.Remove(organizationID)
	return nil
}

func (s *subscriptionService) Status(ctx context.Context, organizationID string) (*model.Subscription, error) {
	sub, err := s.repo.FindByOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, suberrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("subscription", organizationID)
		}
		s.logger.Error("Failed to load subscription", "organization_id", organizationID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve subscription", err)
	}

	return sub, nil
}
