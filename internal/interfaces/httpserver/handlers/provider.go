package handlers

import (
	"github.com/rs/zerolog"

	"r2-dashboard/internal/config"
)

// Services groups the capabilities the handlers depend on.
type Services struct {
	Buckets  BucketService
	Objects  ObjectService
	Setup    SetupService
	Users    UserService
	Sessions SessionIssuer
	Checks   map[string]Pinger
}

// Provider wires HTTP handlers.
type Provider struct {
	Buckets *BucketHandler
	Objects *ObjectHandler
	Setup   *SetupHandler
	Auth    *AuthHandler
	Users   *UserHandler
	Health  *HealthHandler
}

func NewProvider(cfg *config.Config, services Services, log zerolog.Logger) *Provider {
	return &Provider{
		Buckets: NewBucketHandler(services.Buckets, log),
		Objects: NewObjectHandler(cfg, services.Objects, log),
		Setup:   NewSetupHandler(services.Setup, cfg.AuthEnabled, log),
		Auth:    NewAuthHandler(services.Users, services.Sessions, log),
		Users:   NewUserHandler(services.Users, log),
		Health:  NewHealthHandler(services.Checks, log),
	}
}
