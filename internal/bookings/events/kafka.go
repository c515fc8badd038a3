package events

import (
	"context"

	"bookline/pkg/kafka"
	"bookline/pkg/model"
)

const source = "bookline-api"

// KafkaPublisher emits booking lifecycle events onto the booking events
// topic, keyed by organization so one tenant's events stay ordered.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

type bookingEvent struct {
	EventType string         `json:"event_type"`
	Booking   *model.Booking `json:"booking"`
}

func (p *KafkaPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error {
	msg := kafka.NewMessage().
		WithKey(booking.OrganizationID).
		WithValue(bookingEvent{EventType: eventType, Booking: booking}).
		WithEventType(eventType).
		WithSource(source).
		Build()

	return p.producer.Publish(ctx, msg)
}
