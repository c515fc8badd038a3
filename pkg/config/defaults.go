package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "bookline"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDefaultTimezone = "Asia/Tashkent"

	DefaultReminderPollInterval = 2 * time.Minute
	DefaultReminderBatchLimit   = 200

	DefaultEntitlementCacheSize = 512
	DefaultEntitlementCacheTTL  = 30 * time.Second

	DefaultSMTPPort = 587

	DefaultPaginationLimit = 100
)
