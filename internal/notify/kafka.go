package notify

import (
	"context"

	"bookline/pkg/kafka"
	"bookline/pkg/model"
)

const (
	eventReminderDue = "reminder.due"
	source           = "bookline-reminderd"
)

// KafkaNotifier publishes due reminders onto the reminder events topic for
// downstream delivery channels (chat bots, push gateways).
type KafkaNotifier struct {
	producer *kafka.Producer
}

func NewKafkaNotifier(producer *kafka.Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

type reminderEvent struct {
	Kind    string         `json:"kind"`
	Booking *model.Booking `json:"booking"`
}

func (n *KafkaNotifier) Notify(ctx context.Context, booking *model.Booking, kind string) error {
	msg := kafka.NewMessage().
		WithKey(booking.OrganizationID).
		WithValue(reminderEvent{Kind: kind, Booking: booking}).
		WithEventType(eventReminderDue).
		WithSource(source).
		Build()

	return n.producer.Publish(ctx, msg)
}
