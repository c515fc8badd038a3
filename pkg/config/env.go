package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultTimezone = "DEFAULT_TIMEZONE"

	EnvReminderPollInterval = "REMINDER_POLL_INTERVAL"
	EnvReminderBatchLimit   = "REMINDER_BATCH_LIMIT"

	EnvEntitlementCacheSize = "ENTITLEMENT_CACHE_SIZE"
	EnvEntitlementCacheTTL  = "ENTITLEMENT_CACHE_TTL"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUser     = "SMTP_USER"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPFrom     = "SMTP_FROM"
	EnvSMTPNotifyTo = "SMTP_NOTIFY_TO"
)
