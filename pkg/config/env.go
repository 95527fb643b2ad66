package config

const (
	EnvStoreDriver       = "STORE_DRIVER"
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTimeZone                  = "TIME_ZONE"
	EnvDefaultSlotMinutes        = "DEFAULT_SLOT_MINUTES"
	EnvCheckInTolerance          = "CHECK_IN_TOLERANCE"
	EnvEnrollmentTTL             = "ENROLLMENT_TTL"
	EnvRejectionReasonMinLength  = "REJECTION_REASON_MIN_LENGTH"
	EnvSettlementTimeout         = "SETTLEMENT_TIMEOUT"
	EnvTransferSettlementTimeout = "TRANSFER_SETTLEMENT_TIMEOUT"
	EnvGatewayTimeout            = "GATEWAY_TIMEOUT"

	EnvJobsEnabled              = "JOBS_ENABLED"
	EnvSweepSchedule            = "SWEEP_SCHEDULE"
	EnvNoShowSchedule           = "NO_SHOW_SCHEDULE"
	EnvEnrollmentExpirySchedule = "ENROLLMENT_EXPIRY_SCHEDULE"

	EnvStripeSecretKey = "STRIPE_SECRET_KEY"
	EnvCurrency        = "CURRENCY"
	EnvBizumRedirect   = "BIZUM_REDIRECT_BASE_URL"

	EnvEventsTopic = "EVENTS_TOPIC"
	EnvEventsDLQ   = "EVENTS_DLQ_TOPIC"
)
