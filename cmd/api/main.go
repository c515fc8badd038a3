package main

import (
	availabilityhandler "bookline/internal/availability/handler"
	availabilityrepo "bookline/internal/availability/repository"
	availabilityservice "bookline/internal/availability/service"
	availabilityvalidator "bookline/internal/availability/validator"
	"bookline/internal/bookings/events"
	bookinghandler "bookline/internal/bookings/handler"
	bookingrepo "bookline/internal/bookings/repository"
	bookingservice "bookline/internal/bookings/service"
	bookingvalidator "bookline/internal/bookings/validator"
	calendarhandler "bookline/internal/calendar/handler"
	calendarservice "bookline/internal/calendar/service"
	"bookline/internal/notify"
	orghandler "bookline/internal/organizations/handler"
	orgrepo "bookline/internal/organizations/repository"
	orgservice "bookline/internal/organizations/service"
	reminderrepo "bookline/internal/reminders/repository"
	reminderservice "bookline/internal/reminders/service"
	cataloghandler "bookline/internal/services/handler"
	catalogrepo "bookline/internal/services/repository"
	catalogservice "bookline/internal/services/service"
	subscriptionhandler "bookline/internal/subscriptions/handler"
	subscriptionrepo "bookline/internal/subscriptions/repository"
	subscriptionservice "bookline/internal/subscriptions/service"
	"bookline/pkg/app"
	"bookline/pkg/config"
	"bookline/pkg/contracts"
	"bookline/pkg/kafka"
	kafkaconfig "bookline/pkg/kafka/config"
)

const ServiceName = "api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting booking API")

	handlers := initHandlers(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) []contracts.Handler {
	log := cfg.Log

	organizationRepo := orgrepo.NewMongoOrganizationRepository(cfg)
	serviceRepo := catalogrepo.NewMongoServiceRepository(cfg)
	ruleRepo := availabilityrepo.NewMongoRuleRepository(cfg)
	blackoutRepo := availabilityrepo.NewMongoBlackoutRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	subscriptionRepo := subscriptionrepo.NewMongoSubscriptionRepository(cfg)
	reminderRepo := reminderrepo.NewMongoReminderRepository(cfg)

	organizationService := orgservice.NewOrganizationService(organizationRepo, cfg)
	catalogService := catalogservice.NewCatalogService(serviceRepo, cfg)
	subscriptionService := subscriptionservice.NewSubscriptionService(subscriptionRepo, cfg)

	availabilityService := availabilityservice.NewAvailabilityService(
		ruleRepo,
		blackoutRepo,
		serviceRepo,
		bookingRepo,
		availabilityvalidator.NewRuleValidator(log),
		log,
	)

	// Reminders scheduled from the API are delivered by the reminder
	// worker; the log notifier here only covers direct use in tests.
	reminderService := reminderservice.NewReminderService(
		reminderRepo,
		bookingRepo,
		notify.NewLogNotifier(log),
		cfg.ReminderBatchLimit,
		log,
	)

	var eventPublisher bookingservice.EventPublisher
	kafkaCfg := kafkaconfig.Load()
	if kafkaCfg.Enabled {
		producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEventsTopic)
		if err != nil {
			log.Fatal("Failed to create Kafka producer", "error", err)
		}
		eventPublisher = events.NewKafkaPublisher(producer)
		log.Info("Booking event publishing enabled", "topic", kafkaCfg.BookingEventsTopic)
	}

	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		subscriptionService,
		organizationService,
		serviceRepo,
		reminderService,
		eventPublisher,
		bookingvalidator.NewBookingValidator(log),
		log,
	)

	calendarService := calendarservice.NewCalendarService(organizationService, bookingRepo, log)

	log.Info("Booking API initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		orghandler.NewOrganizationHandler(organizationService, log),
		cataloghandler.NewCatalogHandler(catalogService, log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, organizationService, log),
		bookinghandler.NewBookingHandler(bookingService, log),
		subscriptionhandler.NewSubscriptionHandler(subscriptionService, log),
		calendarhandler.NewCalendarHandler(calendarService, log),
	}
}
