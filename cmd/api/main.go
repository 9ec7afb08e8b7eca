package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/config"
	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/infra/auth"
	"github.com/xavierca1/visa-leads/internal/infra/database"
	"github.com/xavierca1/visa-leads/internal/infra/http/handlers"
	"github.com/xavierca1/visa-leads/internal/infra/integration/crm"
	"github.com/xavierca1/visa-leads/internal/infra/mail"
	"github.com/xavierca1/visa-leads/internal/infra/queue"
	"github.com/xavierca1/visa-leads/internal/infra/storage"
	"github.com/xavierca1/visa-leads/internal/infra/worker"
	"github.com/xavierca1/visa-leads/internal/logger"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.IsDev(), cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Store
	repo, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.SeedDemo {
		n, err := database.SeedDemoLeads(ctx, repo)
		if err != nil {
			return fmt.Errorf("seed demo leads: %w", err)
		}
		log.Info().Int("leads", n).Msg("demo leads seeded")
	}

	// 2. Resume storage
	files, err := openFileStorage(ctx, cfg)
	if err != nil {
		return err
	}

	// 3. Notifications: mail, CRM and the broker that feeds them
	var mailer *mail.EmailSender
	if cfg.MailHost != "" {
		mailer = mail.NewEmailSender(mail.Config{
			Host:       cfg.MailHost,
			Port:       cfg.MailPort,
			User:       cfg.MailUser,
			Password:   cfg.MailPass,
			From:       cfg.MailFrom,
			AdminEmail: cfg.AdminNotifyEmail,
		})
	}

	crmClient := crm.NewClient(cfg.CRMAPIURL, cfg.CRMAPIToken, log)

	var publisher usecase.EventPublisher = usecase.NoopPublisher{}
	var broker handlers.BrokerConn
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()

		publisher = queue.NewProducer(rabbitMQ.Ch)
		broker = rabbitMQ.Conn

		var workerMailer queue.Mailer
		if mailer != nil {
			workerMailer = mailer
		}
		var workerCRM queue.CRMClient
		if crmClient.Enabled() {
			workerCRM = crmClient
		}

		leadWorker := queue.NewWorker(rabbitMQ.Ch, workerMailer, workerCRM, log)
		go func() {
			if err := leadWorker.Start(ctx, queue.QueueName); err != nil {
				log.Error().Err(err).Msg("lead worker stopped")
			}
		}()
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, lead events are not published")
	}

	if cfg.DigestInterval > 0 && mailer != nil {
		digest := worker.NewPendingDigestWorker(repo, mailer, cfg.DigestInterval, cfg.DigestMinAge, log)
		go digest.Start(ctx)
	}

	// 4. Use cases
	rules := usecase.ValidationRules{RequireCountry: cfg.RequireCountry}
	submitUC := usecase.NewSubmitLeadUseCase(repo, files, publisher, rules, cfg.UploadTimeout, log)
	updateStatusUC := usecase.NewUpdateLeadStatusUseCase(repo, publisher, log)
	listUC := usecase.NewListLeadsUseCase(repo)

	// 5. Handlers
	rateLimiter := handlers.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()

	routerCfg := handlers.RouterConfig{
		Leads:          handlers.NewLeadHandler(submitUC, updateStatusUC, listUC, repo, rateLimiter, log),
		Validation:     handlers.NewValidationHandler(rules),
		Health:         handlers.NewHealthHandler(repo, broker, version),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	}

	if cfg.AdminAuthEnabled {
		authService, err := auth.NewService(auth.Config{
			AdminEmail:   cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
			JWTSecret:    cfg.JWTSecret,
			TokenTTL:     cfg.JWTTTL,
		})
		if err != nil {
			return fmt.Errorf("admin auth: %w", err)
		}
		routerCfg.Auth = handlers.NewAuthHandler(authService, log)
		routerCfg.Authenticator = authService
	}

	// 6. Server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("lead service listening")
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg *config.Config, log zerolog.Logger) (entity.LeadRepositoryInterface, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		if err := database.RunMigrations(cfg.DatabaseURL, "up"); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return database.NewLeadRepository(db), closeDB(db, log), nil

	case "sqlite":
		db, err := database.NewSQLiteConnection(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		repo, err := database.NewSQLiteLeadRepository(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, closeDB(db, log), nil

	default:
		return database.NewMemoryLeadRepository(), func() {}, nil
	}
}

func closeDB(db *sql.DB, log zerolog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
}

func openFileStorage(ctx context.Context, cfg *config.Config) (usecase.FileStorage, error) {
	if cfg.UploadDriver != "s3" {
		return storage.NewStaticStore(cfg.UploadBaseURL), nil
	}
	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PathStyle:       cfg.S3PathStyle,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		PublicBaseURL:   cfg.UploadBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 storage: %w", err)
	}
	return store, nil
}
