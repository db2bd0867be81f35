package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/domain/appconfig"
	"r2-dashboard/internal/domain/buckets"
	"r2-dashboard/internal/domain/objects"
	"r2-dashboard/internal/domain/setup"
	"r2-dashboard/internal/domain/user"
	"r2-dashboard/internal/infrastructure/auth"
	"r2-dashboard/internal/infrastructure/cloudflare"
	"r2-dashboard/internal/infrastructure/crontab"
	"r2-dashboard/internal/infrastructure/database"
	"r2-dashboard/internal/infrastructure/logger"
	"r2-dashboard/internal/infrastructure/observability"
	"r2-dashboard/internal/infrastructure/repository/appconfigrepo"
	"r2-dashboard/internal/infrastructure/repository/userrepo"
	"r2-dashboard/internal/infrastructure/storage"
	"r2-dashboard/internal/interfaces/httpserver"
	"r2-dashboard/internal/interfaces/httpserver/handlers"
	"r2-dashboard/internal/utils/crypto"
)

// @title R2 Dashboard API
// @version 1.0
// @description Browse, search and manage Cloudflare R2 buckets and objects
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	crontab    *crontab.Crontab
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, cron *crontab.Crontab, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		crontab:    cron,
		log:        log,
	}
}

// Start runs the HTTP server and the stats refresher until ctx ends or one fails.
func (a *Application) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.httpServer.Run(ctx)
	})
	g.Go(func() error {
		return a.crontab.Run(ctx)
	})
	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		WriteDSN:        cfg.GetDatabaseWriteDSN(),
		ReadDSN:         cfg.GetDatabaseReadDSN(),
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	sealer, err := crypto.NewSealer(cfg.ConfigEncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize config encryption")
	}
	if !sealer.Enabled() {
		log.Warn().Msg("CONFIG_ENCRYPTION_KEY not set, stored credentials are kept in plaintext")
	}

	configRepository := appconfigrepo.NewRepository(db)
	userRepository := userrepo.NewRepository(db)

	resolver := appconfig.NewResolver(
		configRepository,
		sealer,
		cfg.EnvCredentials(),
		appconfig.NewTTLCache[map[string]string](cfg.CredentialsCacheTTL, nil),
		log,
	)

	storageClient := storage.NewR2Storage(storage.NewClientFactory(cfg, resolver, log), log)
	domainClient := cloudflare.NewClient(cfg, resolver, log)

	statsCache, err := buckets.NewStatsCache(cfg.StatsCacheSize, cfg.StatsCacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize stats cache")
	}
	bucketService := buckets.NewService(cfg, storageClient, domainClient, statsCache, log)
	objectService := objects.NewService(cfg, storageClient, log)

	userService := user.NewService(userRepository, log)
	setupService := setup.NewService(resolver, userRepository, userService, storage.NewVerifier(cfg), log)

	validator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth")
	}

	provider := handlers.NewProvider(cfg, handlers.Services{
		Buckets:  bucketService,
		Objects:  objectService,
		Setup:    setupService,
		Users:    userService,
		Sessions: validator,
		Checks: map[string]handlers.Pinger{
			"database": handlers.PingFunc(func(context.Context) error { return database.Ping(db) }),
		},
	}, log)

	httpServer := httpserver.New(cfg, log, provider, validator, setupService)
	app := NewApplication(httpServer, crontab.NewCrontab(cfg, bucketService, log), log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
