package main

import (
	"context"

	audithandler "courtside/internal/audit/handler"
	auditrepo "courtside/internal/audit/repository"
	auditservice "courtside/internal/audit/service"
	availabilityhandler "courtside/internal/availability/handler"
	availabilityservice "courtside/internal/availability/service"
	courtshandler "courtside/internal/courts/handler"
	courtsrepo "courtside/internal/courts/repository"
	courtsservice "courtside/internal/courts/service"
	courtsvalidator "courtside/internal/courts/validator"
	"courtside/internal/health"
	"courtside/internal/jobs"
	maintenancehandler "courtside/internal/maintenance/handler"
	maintenancerepo "courtside/internal/maintenance/repository"
	maintenanceservice "courtside/internal/maintenance/service"
	maintenancevalidator "courtside/internal/maintenance/validator"
	paymentshandler "courtside/internal/payments/handler"
	paymentsrepo "courtside/internal/payments/repository"
	paymentsservice "courtside/internal/payments/service"
	"courtside/internal/payments/settler"
	paymentsvalidator "courtside/internal/payments/validator"
	reservationshandler "courtside/internal/reservations/handler"
	reservationsrepo "courtside/internal/reservations/repository"
	reservationsservice "courtside/internal/reservations/service"
	reservationsvalidator "courtside/internal/reservations/validator"
	tariffshandler "courtside/internal/tariffs/handler"
	tariffsrepo "courtside/internal/tariffs/repository"
	tariffsservice "courtside/internal/tariffs/service"
	tariffsvalidator "courtside/internal/tariffs/validator"
	"courtside/pkg/app"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	"courtside/pkg/db"
	"courtside/pkg/db/memory"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/kafka"
	kafkamiddleware "courtside/pkg/kafka/middleware"
)

const ServiceName = "courtside"

type repositories struct {
	courts       courtsrepo.CourtRepository
	maintenance  maintenancerepo.MaintenanceRepository
	reservations reservationsrepo.ReservationRepository
	tariffs      tariffsrepo.TariffRepository
	enrollments  tariffsrepo.EnrollmentRepository
	promos       tariffsrepo.PromoRepository
	ledger       paymentsrepo.LedgerRepository
	wallets      paymentsrepo.WalletRepository
	audit        auditrepo.AuditRepository
	tx           db.TransactionManager
	store        health.Pinger
}

type services struct {
	courts       courtsservice.CourtService
	maintenance  maintenanceservice.MaintenanceService
	availability availabilityservice.AvailabilityService
	tariffs      tariffsservice.TariffService
	enrollments  tariffsservice.EnrollmentService
	promos       tariffsservice.PromoService
	reservations reservationsservice.ReservationService
	payments     paymentsservice.PaymentService
	audit        auditservice.AuditService
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Courtside reservation engine")
	newApplication(cfg).Run()
}

// newApplication wires every store, service and handler into a server ready
// to run.
func newApplication(cfg *config.Config) *app.Application {
	serverApp := app.NewApplication(cfg)
	repos := initRepositories(cfg)
	recorder := initRecorder(cfg, serverApp, repos.audit)
	svc := initServices(cfg, repos, recorder)

	if cfg.JobsEnabled {
		initJobs(cfg, serverApp, svc)
	}

	clk := clock.RealClock{}
	serverApp.SetApp(repos.store,
		courtshandler.NewCourtHandler(svc.courts, cfg.Log),
		maintenancehandler.NewMaintenanceHandler(svc.maintenance, cfg),
		availabilityhandler.NewAvailabilityHandler(svc.availability, clk, cfg),
		tariffshandler.NewTariffHandler(svc.tariffs, svc.promos, cfg.Log),
		tariffshandler.NewEnrollmentHandler(svc.enrollments, cfg.Log),
		reservationshandler.NewReservationHandler(svc.reservations, clk, cfg),
		paymentshandler.NewPaymentHandler(svc.payments, cfg.Log),
		audithandler.NewAuditHandler(svc.audit, cfg.Log),
	)
	return serverApp
}

func initRepositories(cfg *config.Config) repositories {
	if cfg.UsesMongo() {
		cfg.SetMongo()
		cfg.Log.Info("Using MongoDB store", "database", cfg.MongoDatabaseName)
		return repositories{
			courts:       courtsrepo.NewMongoCourtRepository(cfg),
			maintenance:  maintenancerepo.NewMongoMaintenanceRepository(cfg),
			reservations: reservationsrepo.NewMongoReservationRepository(cfg),
			tariffs:      tariffsrepo.NewMongoTariffRepository(cfg),
			enrollments:  tariffsrepo.NewMongoEnrollmentRepository(cfg),
			promos:       tariffsrepo.NewMongoPromoRepository(cfg),
			ledger:       paymentsrepo.NewMongoLedgerRepository(cfg),
			wallets:      paymentsrepo.NewMongoWalletRepository(cfg),
			audit:        auditrepo.NewMongoAuditRepository(cfg),
			tx:           mongotx.NewTransactionManager(cfg.Client.Mongo),
			store:        health.MongoPinger(cfg.Client.Mongo),
		}
	}

	store := memory.NewStore()
	cfg.Log.Warn("Using in-memory store, state is lost on restart")
	return repositories{
		courts:       courtsrepo.NewMemoryCourtRepository(store),
		maintenance:  maintenancerepo.NewMemoryMaintenanceRepository(store),
		reservations: reservationsrepo.NewMemoryReservationRepository(store),
		tariffs:      tariffsrepo.NewMemoryTariffRepository(store),
		enrollments:  tariffsrepo.NewMemoryEnrollmentRepository(store),
		promos:       tariffsrepo.NewMemoryPromoRepository(store),
		ledger:       paymentsrepo.NewMemoryLedgerRepository(store),
		wallets:      paymentsrepo.NewMemoryWalletRepository(store),
		audit:        auditrepo.NewMemoryAuditRepository(store),
		tx:           store,
		store:        health.StoreReady,
	}
}

// initRecorder publishes audit events to Kafka when brokers are configured.
func initRecorder(cfg *config.Config, serverApp *app.Application, repo auditrepo.AuditRepository) *auditservice.Recorder {
	var publisher auditservice.EventPublisher
	if cfg.Kafka != nil {
		producer, err := kafka.NewProducer(cfg.Kafka, cfg.EventsTopic, cfg.EventsDLQ, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		serverApp.OnShutdown(app.Closer{
			Name:  "kafka-producer",
			Close: func(context.Context) error { return producer.Close() },
		})
		publisher = auditservice.NewKafkaPublisher(producer, ServiceName)
		cfg.Log.Info("Audit events published to Kafka", "topic", cfg.EventsTopic)
	}
	return auditservice.NewRecorder(repo, publisher, clock.RealClock{}, cfg.Log)
}

func initServices(cfg *config.Config, repos repositories, recorder *auditservice.Recorder) services {
	clk := clock.RealClock{}

	tariffValidator := tariffsvalidator.NewTariffValidator(cfg.Log, cfg.RejectionReasonMinLength)
	tariffService := tariffsservice.NewTariffService(repos.tariffs, repos.enrollments, repos.tx, tariffValidator, recorder, clk, cfg)
	promoService := tariffsservice.NewPromoService(repos.promos, repos.tx, tariffValidator, recorder, clk, cfg)

	reservationService := reservationsservice.NewReservationService(
		repos.reservations,
		repos.courts,
		repos.maintenance,
		tariffService,
		promoService,
		repos.tx,
		reservationsvalidator.NewReservationValidator(cfg.Log),
		recorder,
		clk,
		cfg,
	)

	paymentService := paymentsservice.NewPaymentService(
		repos.ledger,
		repos.wallets,
		reservationService,
		initSettlers(cfg, repos.wallets),
		repos.tx,
		paymentsvalidator.NewPaymentValidator(cfg.Log),
		recorder,
		clk,
		cfg,
	)

	cfg.Log.Info("Services initialized")
	return services{
		courts: courtsservice.NewCourtService(
			repos.courts, repos.tx, courtsvalidator.NewCourtValidator(cfg.Log), recorder, clk, cfg,
		),
		maintenance: maintenanceservice.NewMaintenanceService(
			repos.maintenance, repos.courts, repos.tx, maintenancevalidator.NewMaintenanceValidator(cfg.Log), recorder, clk, cfg,
		),
		availability: availabilityservice.NewAvailabilityService(repos.courts, repos.maintenance, repos.reservations, clk, cfg),
		tariffs:      tariffService,
		enrollments:  tariffsservice.NewEnrollmentService(repos.enrollments, repos.tariffs, repos.tx, tariffValidator, recorder, clk, cfg),
		promos:       promoService,
		reservations: reservationService,
		payments:     paymentService,
		audit:        auditservice.NewAuditService(repos.audit),
	}
}

// initSettlers registers one settler per payment method. CARD is only
// offered when a Stripe key is configured.
func initSettlers(cfg *config.Config, wallets paymentsrepo.WalletRepository) settler.Registry {
	settlers := []settler.Settler{
		settler.NewBizumSettler(cfg.BizumRedirect),
		settler.OnsiteSettler{},
		settler.TransferSettler{},
		settler.CourtesySettler{},
		settler.NewCreditsSettler(wallets),
	}
	if cfg.StripeSecretKey != "" {
		gateway := settler.NewStripeGateway(cfg.StripeSecretKey)
		settlers = append(settlers, settler.NewCardSettler(gateway, cfg.Currency, cfg.GatewayTimeout))
	} else {
		cfg.Log.Warn("Stripe secret key not set, card payments are disabled")
	}
	return settler.NewRegistry(settlers...)
}

func initJobs(cfg *config.Config, serverApp *app.Application, svc services) {
	scheduler := jobs.NewScheduler(cfg)
	if err := jobs.Schedule(scheduler, jobs.Sweeps(cfg, svc.payments, svc.reservations, svc.enrollments)); err != nil {
		cfg.Log.Fatal("Failed to schedule jobs", "error", err)
	}
	scheduler.Start()
	serverApp.OnShutdown(app.Closer{Name: "jobs", Close: scheduler.Stop})
}
