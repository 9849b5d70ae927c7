package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	availabilityapp "campnest/internal/app/handlers/availability"
	bookingapp "campnest/internal/app/handlers/booking"
	paymentsapp "campnest/internal/app/handlers/payments"
	reviewsapp "campnest/internal/app/handlers/reviews"
	sitesapp "campnest/internal/app/handlers/sites"
	"campnest/internal/app/middleware"
	appoutbox "campnest/internal/app/outbox"
	"campnest/internal/app/policies"
	"campnest/internal/app/queries"
	"campnest/internal/app/schedule"
	authsvc "campnest/internal/app/services/auth"
	"campnest/internal/app/uow"
	kafkabroker "campnest/internal/infra/broker/kafka"
	"campnest/internal/infra/config"
	mongodb "campnest/internal/infra/db/mongo"
	ginserver "campnest/internal/infra/http/gin"
	"campnest/internal/infra/notify"
	"campnest/internal/infra/obs"
	outboxinfra "campnest/internal/infra/outbox"
	"campnest/internal/infra/payments"
	"campnest/internal/infra/security"
	"campnest/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("falling back to in-memory storage", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	for _, job := range app.background {
		go job(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	app.close(logger)
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	ready      func() error
	background []func(context.Context)
	closers    []func() error
}

func (a application) close(logger *slog.Logger) {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}
}

type backends struct {
	uowFactory uow.UoWFactory
	outbox     appoutbox.Outbox
	ready      func() error
	background []func(context.Context)
	closers    []func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		be  backends
		err error
	)
	if cfg.MongoURI != "" {
		be, err = buildMongoBackends(ctx, cfg, logger)
	} else {
		be = buildMemoryBackends()
	}
	if err != nil {
		return application{}, err
	}

	idStore := memory.NewIdempotencyStore()
	authService := &authsvc.Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	var checkoutPort policies.PaymentsPort
	if cfg.PaymentsBaseURL != "" {
		checkoutPort = &payments.HTTPProvider{
			Client:    &http.Client{Timeout: cfg.PaymentsTimeout},
			BaseURL:   cfg.PaymentsBaseURL,
			APIKey:    cfg.PaymentsAPIKey,
			ReturnURL: cfg.PaymentsReturnURL,
			CancelURL: cfg.PaymentsCancelURL,
			Logger:    logger,
		}
	}

	commandBus := buildCommandRegistry(be, logger)
	queryBus := buildQueryRegistry(be)

	// CheckoutLink sits outside Transaction so the provider call happens
	// after commit; the reservation never holds a session open on it.
	commandsWithMW := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(idStore, nil),
		middleware.CheckoutLink(checkoutPort, be.uowFactory, logger),
		middleware.Transaction(be.uowFactory, nil),
		middleware.OutboxFlush(be.outbox),
	)
	queriesWithMW := middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(middleware.SelfValidator{}),
	)

	sweeper := &schedule.CompletionSweeper{
		Bus:      commandsWithMW,
		Interval: cfg.CompletionSweep,
		Logger:   logger,
	}
	background := append(be.background, sweeper.Run)

	app := application{
		handlers: ginserver.Handlers{
			Booking: ginserver.BookingHandler{
				Commands: commandsWithMW,
				Queries:  queriesWithMW,
				Logger:   logger,
			},
			HostBooking: ginserver.HostBookingHandler{
				Commands: commandsWithMW,
				Queries:  queriesWithMW,
				Logger:   logger,
			},
			Availability: ginserver.AvailabilityHandler{
				Commands: commandsWithMW,
				Queries:  queriesWithMW,
				Logger:   logger,
			},
			Site: ginserver.SiteHandler{
				Commands: commandsWithMW,
				Queries:  queriesWithMW,
				Logger:   logger,
			},
			Review: ginserver.ReviewHandler{
				Commands: commandsWithMW,
				Queries:  queriesWithMW,
				Logger:   logger,
			},
			Payment: ginserver.PaymentHandler{
				Commands: commandsWithMW,
				Verifier: payments.CallbackVerifier{Token: cfg.PaymentsCBToken},
				Logger:   logger,
			},
			Auth: ginserver.AuthHandler{
				Service: authService,
				Logger:  logger,
			},
			AuthMiddleware: ginserver.AuthMiddleware{
				Service: authService,
				Logger:  logger,
			}.Handle,
		},
		ready:      be.ready,
		background: background,
		closers:    be.closers,
	}
	return app, nil
}

func buildMemoryBackends() backends {
	factory := memory.Factory{
		PropertiesRepo:   memory.NewPropertyRepository(),
		SitesRepo:        memory.NewSiteRepository(),
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		BookingRepo:      memory.NewBookingRepository(),
		ReviewsRepo:      memory.NewReviewRepository(),
	}
	return backends{
		uowFactory: factory,
		outbox:     memory.NewOutbox(),
		ready:      func() error { return nil },
	}
}

func buildMongoBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (backends, error) {
	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return backends{}, err
	}

	availabilityRepo := mongodb.NewAvailabilityRepository(client.DB)
	reviewRepo := mongodb.NewReviewRepository(client.DB)
	indexCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := availabilityRepo.EnsureIndexes(indexCtx); err != nil {
		return backends{}, err
	}
	if err := reviewRepo.EnsureIndexes(indexCtx); err != nil {
		return backends{}, err
	}

	factory := mongodb.Factory{
		DB:               client.DB,
		PropertiesRepo:   mongodb.NewPropertyRepository(client.DB),
		SitesRepo:        mongodb.NewSiteRepository(client.DB),
		AvailabilityRepo: availabilityRepo,
		BookingRepo:      mongodb.NewBookingRepository(client.DB),
		ReviewsRepo:      reviewRepo,
	}
	store := outboxinfra.NewStore(client.DB)

	be := backends{
		uowFactory: factory,
		outbox:     store,
		ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		},
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafkabroker.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return backends{}, err
		}
		worker := &outboxinfra.Worker{
			Store:       store,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		be.background = append(be.background, func(ctx context.Context) {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		})
		be.closers = append(be.closers, producer.Close)

		consumer, err := kafkabroker.NewConsumer(cfg.KafkaBrokers, "campnest-notify", nil, notify.EventHandler{
			Notifier: notify.LogNotifier{Logger: logger},
			Logger:   logger,
		})
		if err != nil {
			return backends{}, err
		}
		topics := []string{cfg.KafkaTopicPrefix + "booking.events.v1"}
		be.background = append(be.background, func(ctx context.Context) {
			if err := consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notify consumer stopped", "error", err)
			}
		})
		be.closers = append(be.closers, consumer.Close)
	}
	return be, nil
}

func buildCommandRegistry(be backends, logger *slog.Logger) *commands.Registry {
	reg := commands.NewRegistry()

	commands.Register[bookingapp.RequestBookingCommand, *dto.Booking](reg, &bookingapp.RequestBookingHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger})
	commands.Register[bookingapp.ConfirmBookingCommand, *dto.Booking](reg, &bookingapp.ConfirmBookingHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger})
	commands.Register[bookingapp.CancelBookingCommand, *dto.Booking](reg, &bookingapp.CancelBookingHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger})
	commands.Register[bookingapp.CompleteBookingCommand, *dto.Booking](reg, &bookingapp.CompleteBookingHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger})
	commands.Register[bookingapp.CompleteDueBookingsCommand, int](reg, &bookingapp.CompleteDueBookingsHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger})

	commands.Register[availabilityapp.BlockDatesCommand, struct{}](reg, &availabilityapp.BlockDatesHandler{UoWFactory: be.uowFactory, Logger: logger})
	commands.Register[availabilityapp.UnblockDatesCommand, struct{}](reg, &availabilityapp.UnblockDatesHandler{UoWFactory: be.uowFactory, Logger: logger})

	commands.Register[paymentsapp.ApplyPaymentCallbackCommand, *paymentsapp.CallbackResult](reg, &paymentsapp.ApplyPaymentCallbackHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger})

	commands.Register[reviewsapp.SubmitReviewCommand, *dto.Review](reg, &reviewsapp.SubmitReviewHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger})
	moderate := &reviewsapp.ModerateReviewHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger}
	commands.Register[reviewsapp.PublishReviewCommand, *dto.Review](reg, reviewsapp.PublishReviewHandler{ModerateReviewHandler: moderate})
	commands.Register[reviewsapp.UnpublishReviewCommand, *dto.Review](reg, reviewsapp.UnpublishReviewHandler{ModerateReviewHandler: moderate})

	commands.Register[sitesapp.CreatePropertyCommand, *dto.Property](reg, &sitesapp.CreatePropertyHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger})
	commands.Register[sitesapp.CreateSiteCommand, *dto.Site](reg, &sitesapp.CreateSiteHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger})
	manage := &sitesapp.ManageSiteHandler{UoWFactory: be.uowFactory, Outbox: be.outbox, Logger: logger}
	commands.Register[sitesapp.ActivateSiteCommand, *dto.Site](reg, sitesapp.ActivateSiteHandler{ManageSiteHandler: manage})
	commands.Register[sitesapp.SuspendSiteCommand, *dto.Site](reg, sitesapp.SuspendSiteHandler{ManageSiteHandler: manage})
	commands.Register[sitesapp.UpdateTariffCommand, *dto.Site](reg, sitesapp.UpdateTariffHandler{ManageSiteHandler: manage})
	commands.Register[sitesapp.UpdateCapacityCommand, *dto.Site](reg, sitesapp.UpdateCapacityHandler{ManageSiteHandler: manage})

	return reg
}

func buildQueryRegistry(be backends) *queries.Registry {
	reg := queries.NewRegistry()

	queries.Register[bookingapp.GetBookingQuery, *dto.Booking](reg, &bookingapp.GetBookingHandler{UoWFactory: be.uowFactory})
	queries.Register[bookingapp.GuestBookingsQuery, []dto.Booking](reg, &bookingapp.GuestBookingsHandler{UoWFactory: be.uowFactory})
	queries.Register[bookingapp.HostBookingsQuery, []dto.Booking](reg, &bookingapp.HostBookingsHandler{UoWFactory: be.uowFactory})
	queries.Register[bookingapp.SiteBookingsQuery, []dto.Booking](reg, &bookingapp.SiteBookingsHandler{UoWFactory: be.uowFactory})

	queries.Register[availabilityapp.SiteCalendarQuery, *dto.Calendar](reg, &availabilityapp.SiteCalendarHandler{UoWFactory: be.uowFactory})
	queries.Register[availabilityapp.UnavailableSitesQuery, *dto.UnavailableSites](reg, &availabilityapp.UnavailableSitesHandler{UoWFactory: be.uowFactory})

	queries.Register[reviewsapp.SiteReviewsQuery, *dto.ReviewCollection](reg, &reviewsapp.SiteReviewsHandler{UoWFactory: be.uowFactory})

	queries.Register[sitesapp.GetSiteQuery, *dto.Site](reg, &sitesapp.GetSiteHandler{UoWFactory: be.uowFactory})
	queries.Register[sitesapp.GetPropertyQuery, *dto.Property](reg, &sitesapp.GetPropertyHandler{UoWFactory: be.uowFactory})
	queries.Register[sitesapp.PropertySitesQuery, *dto.SiteCollection](reg, &sitesapp.PropertySitesHandler{UoWFactory: be.uowFactory})
	queries.Register[sitesapp.HostPropertiesQuery, []dto.Property](reg, &sitesapp.HostPropertiesHandler{UoWFactory: be.uowFactory})

	return reg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
