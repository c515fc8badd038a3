package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultKafkaEnabled = false

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	DefaultBookingEventsTopic  = "bookline.booking-events"
	DefaultReminderEventsTopic = "bookline.reminder-events"
)
