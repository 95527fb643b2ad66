package config

import "time"

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"

	DefaultStoreDriver       = StoreDriverMongo
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "courtside"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultTimeZone                  = "Europe/Madrid"
	DefaultSlotMinutes               = 60
	DefaultCheckInTolerance          = 30 * time.Minute
	DefaultEnrollmentTTL             = 365 * 24 * time.Hour
	DefaultRejectionReasonMinLength  = 10
	DefaultSettlementTimeout         = 30 * time.Minute
	DefaultTransferSettlementTimeout = 72 * time.Hour
	DefaultGatewayTimeout            = 20 * time.Second

	DefaultJobsEnabled              = true
	DefaultSweepSchedule            = "@every 5m"
	DefaultNoShowSchedule           = "@every 10m"
	DefaultEnrollmentExpirySchedule = "@hourly"

	DefaultCurrency      = "eur"
	DefaultBizumRedirect = "https://pay.example.com/bizum"

	DefaultEventsTopic = "courtside.events"
	DefaultEventsDLQ   = "courtside.events.dlq"
)
