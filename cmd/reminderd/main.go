package main

import (
	"context"
	"os/signal"
	"syscall"

	bookingrepo "bookline/internal/bookings/repository"
	"bookline/internal/notify"
	reminderrepo "bookline/internal/reminders/repository"
	reminderservice "bookline/internal/reminders/service"
	"bookline/internal/reminders/worker"
	"bookline/pkg/config"
	"bookline/pkg/kafka"
	kafkaconfig "bookline/pkg/kafka/config"
)

const ServiceName = "reminderd"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting reminder worker")

	reminderRepo := reminderrepo.NewMongoReminderRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)

	svc := reminderservice.NewReminderService(
		reminderRepo,
		bookingRepo,
		selectNotifier(cfg),
		cfg.ReminderBatchLimit,
		cfg.Log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repair the schedule before the first pass: confirmations whose
	// reminder writes failed leave gaps the rebuild closes.
	if created, err := svc.RebuildFutureReminders(ctx); err != nil {
		cfg.Log.Error("Failed to rebuild reminder schedule", "error", err)
	} else {
		cfg.Log.Info("Reminder schedule ready", "created", created)
	}

	worker.New(svc, cfg.ReminderPollInterval, cfg.Log).Run(ctx)

	cfg.GracefulShutdown()
}

// selectNotifier picks the delivery channel: SMTP when configured, then
// Kafka when enabled, otherwise the log.
func selectNotifier(cfg *config.Config) notify.Notifier {
	if cfg.SMTPHost != "" && cfg.SMTPNotifyTo != "" {
		cfg.Log.Info("Reminder delivery via SMTP", "host", cfg.SMTPHost)
		return notify.NewMailNotifier(cfg)
	}

	kafkaCfg := kafkaconfig.Load()
	if kafkaCfg.Enabled {
		producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.ReminderEventsTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		cfg.Log.Info("Reminder delivery via Kafka", "topic", kafkaCfg.ReminderEventsTopic)
		return notify.NewKafkaNotifier(producer)
	}

	cfg.Log.Warn("No reminder channel configured, logging reminders only")
	return notify.NewLogNotifier(cfg.Log)
}
