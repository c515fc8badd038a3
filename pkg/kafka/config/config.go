package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all Kafka configuration for the outbound event producers.
type Config struct {
	Brokers []string
	Enabled bool

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string // "none", "gzip", "snappy", "lz4", "zstd"
	ProducerAsync        bool

	BookingEventsTopic  string
	ReminderEventsTopic string
}

func Load() *Config {
	brokersStr := getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)
	brokers := strings.Split(brokersStr, ",")
	for i, broker := range brokers {
		brokers[i] = strings.TrimSpace(broker)
	}

	cfg := &Config{
		Brokers: brokers,
		Enabled: getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),

		ProducerMaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerRequireAcks:  getEnvInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  getEnvStr(EnvKafkaProducerCompression, DefaultProducerCompression),
		ProducerAsync:        getEnvBool(EnvKafkaProducerAsync, DefaultProducerAsync),

		BookingEventsTopic:  getEnvStr(EnvKafkaBookingEventsTopic, DefaultBookingEventsTopic),
		ReminderEventsTopic: getEnvStr(EnvKafkaReminderEventsTopic, DefaultReminderEventsTopic),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Kafka configuration validation failed: %v", err))
	}

	return cfg
}

func (cfg *Config) Validate() error {
	if !cfg.Enabled {
		return nil
	}
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("at least one broker is required")
	}
	for _, b := range cfg.Brokers {
		if b == "" {
			return fmt.Errorf("broker address cannot be empty")
		}
	}
	if cfg.ProducerMaxAttempts < 1 {
		return fmt.Errorf("producer max attempts must be at least 1, got %d", cfg.ProducerMaxAttempts)
	}
	if cfg.BookingEventsTopic == "" || cfg.ReminderEventsTopic == "" {
		return fmt.Errorf("event topics cannot be empty")
	}
	return nil
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
