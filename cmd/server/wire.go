//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
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
	"r2-dashboard/internal/infrastructure/repository/appconfigrepo"
	"r2-dashboard/internal/infrastructure/repository/userrepo"
	"r2-dashboard/internal/infrastructure/storage"
	"r2-dashboard/internal/interfaces/httpserver"
	"r2-dashboard/internal/interfaces/httpserver/handlers"
	"r2-dashboard/internal/interfaces/httpserver/middlewares"
	"r2-dashboard/internal/utils/crypto"
)

var configSet = wire.NewSet(
	appconfigrepo.NewRepository,
	wire.Bind(new(appconfig.Repository), new(*appconfigrepo.Repository)),
	newSealer,
	wire.Bind(new(appconfig.Sealer), new(*crypto.Sealer)),
	newCredentialsCache,
	newResolver,
	wire.Bind(new(storage.CredentialSource), new(*appconfig.Resolver)),
	wire.Bind(new(cloudflare.CredentialSource), new(*appconfig.Resolver)),
	wire.Bind(new(setup.ConfigStore), new(*appconfig.Resolver)),
)

var storageSet = wire.NewSet(
	storage.NewClientFactory,
	wire.Bind(new(storage.ClientProvider), new(*storage.ClientFactory)),
	storage.NewR2Storage,
	wire.Bind(new(buckets.Storage), new(*storage.R2Storage)),
	wire.Bind(new(objects.Storage), new(*storage.R2Storage)),
	cloudflare.NewClient,
	wire.Bind(new(buckets.DomainProvider), new(*cloudflare.Client)),
	newStatsCache,
	buckets.NewService,
	objects.NewService,
	storage.NewVerifier,
	wire.Bind(new(setup.Verifier), new(*storage.Verifier)),
)

var accountSet = wire.NewSet(
	userrepo.NewRepository,
	wire.Bind(new(user.Repository), new(*userrepo.Repository)),
	wire.Bind(new(setup.UserCounter), new(*userrepo.Repository)),
	user.NewService,
	wire.Bind(new(setup.UserCreator), new(*user.Service)),
	setup.NewService,
	wire.Bind(new(middlewares.SetupChecker), new(*setup.Service)),
	auth.NewValidator,
)

// BuildApplication assembles the dashboard with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		configSet,
		storageSet,
		accountSet,
		newHandlerProvider,
		httpserver.New,
		wire.Bind(new(crontab.StatsRefresher), new(*buckets.Service)),
		crontab.NewCrontab,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		WriteDSN:        cfg.GetDatabaseWriteDSN(),
		ReadDSN:         cfg.GetDatabaseReadDSN(),
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newSealer(cfg *config.Config) (*crypto.Sealer, error) {
	return crypto.NewSealer(cfg.ConfigEncryptionKey)
}

func newCredentialsCache(cfg *config.Config) *appconfig.TTLCache[map[string]string] {
	return appconfig.NewTTLCache[map[string]string](cfg.CredentialsCacheTTL, nil)
}

func newResolver(cfg *config.Config, repo appconfig.Repository, sealer appconfig.Sealer, cache *appconfig.TTLCache[map[string]string], log zerolog.Logger) *appconfig.Resolver {
	return appconfig.NewResolver(repo, sealer, cfg.EnvCredentials(), cache, log)
}

func newStatsCache(cfg *config.Config) (*buckets.StatsCache, error) {
	return buckets.NewStatsCache(cfg.StatsCacheSize, cfg.StatsCacheTTL)
}

func newHandlerProvider(
	cfg *config.Config,
	db *gorm.DB,
	bucketService *buckets.Service,
	objectService *objects.Service,
	setupService *setup.Service,
	userService *user.Service,
	validator *auth.Validator,
	log zerolog.Logger,
) *handlers.Provider {
	return handlers.NewProvider(cfg, handlers.Services{
		Buckets:  bucketService,
		Objects:  objectService,
		Setup:    setupService,
		Users:    userService,
		Sessions: validator,
		Checks: map[string]handlers.Pinger{
			"database": handlers.PingFunc(func(context.Context) error { return database.Ping(db) }),
		},
	}, log)
}
