// Command seed provisions a demo tenant for local development.
package main

import (
	"context"
	"time"

	availabilityrepo "bookline/internal/availability/repository"
	orgrepo "bookline/internal/organizations/repository"
	orgservice "bookline/internal/organizations/service"
	catalogrepo "bookline/internal/services/repository"
	catalogservice "bookline/internal/services/service"
	subscriptionrepo "bookline/internal/subscriptions/repository"
	subscriptionservice "bookline/internal/subscriptions/service"
	"bookline/pkg/config"
	"bookline/pkg/model"
)

const ServiceName = "seed"

const demoAdminUserID = 100000001

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	organizationService := orgservice.NewOrganizationService(orgrepo.NewMongoOrganizationRepository(cfg), cfg)
	catalogService := catalogservice.NewCatalogService(catalogrepo.NewMongoServiceRepository(cfg), cfg)
	subscriptionService := subscriptionservice.NewSubscriptionService(subscriptionrepo.NewMongoSubscriptionRepository(cfg), cfg)
	ruleRepo := availabilityrepo.NewMongoRuleRepository(cfg)

	org, err := organizationService.Create(ctx, "Demo Salon", cfg.DefaultTimezone)
	if err != nil {
		cfg.Log.Fatal("Failed to create demo organization", "error", err)
	}
	cfg.Log.Info("Created demo organization", "organization_id", org.ID, "calendar_token", org.CalendarToken)

	if err := organizationService.AddAdmin(ctx, org.ID, demoAdminUserID, "owner"); err != nil {
		cfg.Log.Fatal("Failed to add demo admin", "error", err)
	}

	services := []*model.Service{
		{OrganizationID: org.ID, Name: "Consultation", DurationMinutes: 60},
		{OrganizationID: org.ID, Name: "Quick checkup", DurationMinutes: 30},
	}
	for _, svc := range services {
		if err := catalogService.Create(ctx, svc); err != nil {
			cfg.Log.Fatal("Failed to create demo service", "name", svc.Name, "error", err)
		}
		cfg.Log.Info("Created demo service", "service_id", svc.ID, "name", svc.Name)
	}

	// Working hours Monday through Friday.
	for weekday := 1; weekday <= 5; weekday++ {
		rule := &model.AvailabilityRule{
			OrganizationID:  org.ID,
			Weekday:         weekday,
			StartTime:       "09:00",
			EndTime:         "18:00",
			SlotStepMinutes: 30,
		}
		if err := ruleRepo.Create(ctx, rule); err != nil {
			cfg.Log.Fatal("Failed to create demo availability rule", "weekday", weekday, "error", err)
		}
	}

	if _, err := subscriptionService.Activate(ctx, org.ID, model.PlanBasic, 30); err != nil {
		cfg.Log.Fatal("Failed to activate demo subscription", "error", err)
	}

	cfg.Log.Info("Demo tenant ready",
		"organization_id", org.ID,
		"admin_user_id", demoAdminUserID,
		"calendar_feed", "/calendar/"+org.CalendarToken,
	)

	cfg.GracefulShutdown()
}
