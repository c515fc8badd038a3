// Package worker drives periodic reminder delivery.
package worker

import (
	"context"
	"time"

	"bookline/internal/reminders/service"
	"bookline/pkg/logger"
)

type Worker struct {
	service  service.ReminderService
	interval time.Duration
	logger   *logger.Logger
}

func New(svc service.ReminderService, interval time.Duration, log *logger.Logger) *Worker {
	return &Worker{
		service:  svc,
		interval: interval,
		logger:   log,
	}
}

// Run processes due reminders on a fixed interval until the context is
// canceled. Errors are logged and the loop keeps going; a broken pass must
// not stop future deliveries.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Reminder worker started", "poll_interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			if _, err := w.service.ProcessDue(ctx); err != nil {
				w.logger.Error("Reminder pass failed", "error", err)
			}
		}
	}
}
