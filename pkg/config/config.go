package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"courtside/pkg/client"
	kafka_config "courtside/pkg/kafka/config"
	"courtside/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

type Config struct {
	StoreDriver       string
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	TimeZone                  string
	Location                  *time.Location
	DefaultSlotMinutes        int
	CheckInTolerance          time.Duration
	EnrollmentTTL             time.Duration
	RejectionReasonMinLength  int
	SettlementTimeout         time.Duration
	TransferSettlementTimeout time.Duration
	GatewayTimeout            time.Duration

	JobsEnabled              bool
	SweepSchedule            string
	NoShowSchedule           string
	EnrollmentExpirySchedule string

	StripeSecretKey string
	Currency        string
	BizumRedirect   string

	EventsTopic string
	EventsDLQ   string
	Kafka       *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		StoreDriver:       getEnvStr(EnvStoreDriver, DefaultStoreDriver),
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		TimeZone:                  getEnvStr(EnvTimeZone, DefaultTimeZone),
		DefaultSlotMinutes:        getEnvNum(EnvDefaultSlotMinutes, DefaultSlotMinutes),
		CheckInTolerance:          getEnvDuration(EnvCheckInTolerance, DefaultCheckInTolerance),
		EnrollmentTTL:             getEnvDuration(EnvEnrollmentTTL, DefaultEnrollmentTTL),
		RejectionReasonMinLength:  getEnvNum(EnvRejectionReasonMinLength, DefaultRejectionReasonMinLength),
		SettlementTimeout:         getEnvDuration(EnvSettlementTimeout, DefaultSettlementTimeout),
		TransferSettlementTimeout: getEnvDuration(EnvTransferSettlementTimeout, DefaultTransferSettlementTimeout),
		GatewayTimeout:            getEnvDuration(EnvGatewayTimeout, DefaultGatewayTimeout),

		JobsEnabled:              getEnvBool(EnvJobsEnabled, DefaultJobsEnabled),
		SweepSchedule:            getEnvStr(EnvSweepSchedule, DefaultSweepSchedule),
		NoShowSchedule:           getEnvStr(EnvNoShowSchedule, DefaultNoShowSchedule),
		EnrollmentExpirySchedule: getEnvStr(EnvEnrollmentExpirySchedule, DefaultEnrollmentExpirySchedule),

		StripeSecretKey: getEnvStr(EnvStripeSecretKey, ""),
		Currency:        getEnvStr(EnvCurrency, DefaultCurrency),
		BizumRedirect:   getEnvStr(EnvBizumRedirect, DefaultBizumRedirect),

		EventsTopic: getEnvStr(EnvEventsTopic, DefaultEventsTopic),
		EventsDLQ:   getEnvStr(EnvEventsDLQ, DefaultEventsDLQ),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if os.Getenv(kafka_config.EnvKafkaBrokers) != "" {
		kafkaCfg, err := kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal(err.Error())
		}
		cfg.Kafka = kafkaCfg
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) Database() *mongo.Database {
	return cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) UsesMongo() bool {
	return cfg.StoreDriver == StoreDriverMongo
}

// Validate checks every setting and resolves Location from TimeZone.
func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreDriver {
	case StoreDriverMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case StoreDriverMemory:
	default:
		errors = append(errors, fmt.Sprintf("StoreDriver must be one of [mongo, memory], got: %s", cfg.StoreDriver))
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("TimeZone is not a known IANA zone: %s", cfg.TimeZone))
	} else {
		cfg.Location = loc
	}

	positive := map[string]time.Duration{
		"RateLimitWindow":           cfg.RateLimitWindow,
		"RequestTimeout":            cfg.RequestTimeout,
		"IdempotencyTTL":            cfg.IdempotencyTTL,
		"ReadTimeout":               cfg.ReadTimeout,
		"WriteTimeout":              cfg.WriteTimeout,
		"IdleTimeout":               cfg.IdleTimeout,
		"ShutdownTimeout":           cfg.ShutdownTimeout,
		"EnrollmentTTL":             cfg.EnrollmentTTL,
		"SettlementTimeout":         cfg.SettlementTimeout,
		"TransferSettlementTimeout": cfg.TransferSettlementTimeout,
		"GatewayTimeout":            cfg.GatewayTimeout,
	}
	for _, name := range []string{
		"RateLimitWindow", "RequestTimeout", "IdempotencyTTL", "ReadTimeout", "WriteTimeout",
		"IdleTimeout", "ShutdownTimeout", "EnrollmentTTL", "SettlementTimeout",
		"TransferSettlementTimeout", "GatewayTimeout",
	} {
		if positive[name] <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, positive[name]))
		}
	}

	if cfg.CheckInTolerance < 0 {
		errors = append(errors, fmt.Sprintf("CheckInTolerance cannot be negative, got: %s", cfg.CheckInTolerance))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.DefaultSlotMinutes <= 0 || cfg.DefaultSlotMinutes > 24*60 {
		errors = append(errors, fmt.Sprintf("DefaultSlotMinutes must be between 1 and 1440, got: %d", cfg.DefaultSlotMinutes))
	}
	if cfg.RejectionReasonMinLength < 0 {
		errors = append(errors, fmt.Sprintf("RejectionReasonMinLength cannot be negative, got: %d", cfg.RejectionReasonMinLength))
	}
	if len(cfg.Currency) != 3 {
		errors = append(errors, fmt.Sprintf("Currency must be an ISO 4217 code, got: %s", cfg.Currency))
	}
	if cfg.Kafka != nil && cfg.EventsTopic == "" {
		errors = append(errors, "EventsTopic cannot be empty when Kafka brokers are configured")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_driver", cfg.StoreDriver,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"time_zone", cfg.TimeZone,
		"default_slot_minutes", cfg.DefaultSlotMinutes,
		"check_in_tolerance", cfg.CheckInTolerance,
		"enrollment_ttl", cfg.EnrollmentTTL,
		"settlement_timeout", cfg.SettlementTimeout,
		"transfer_settlement_timeout", cfg.TransferSettlementTimeout,
		"gateway_timeout", cfg.GatewayTimeout,
		"jobs_enabled", cfg.JobsEnabled,
		"sweep_schedule", cfg.SweepSchedule,
		"no_show_schedule", cfg.NoShowSchedule,
		"enrollment_expiry_schedule", cfg.EnrollmentExpirySchedule,
		"stripe_key_set", cfg.StripeSecretKey != "",
		"currency", cfg.Currency,
		"kafka_enabled", cfg.Kafka != nil,
		"events_topic", cfg.EventsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
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

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 20
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
