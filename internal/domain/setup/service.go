// Package setup implements the first-run bootstrap of the admin account and the
// storage credentials.
package setup

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"r2-dashboard/internal/domain/appconfig"
	"r2-dashboard/internal/domain/user"
	"r2-dashboard/internal/utils/platformerrors"
	"r2-dashboard/internal/utils/redact"
)

// ConfigStore reads and writes persisted settings.
type ConfigStore interface {
	Resolve(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, entries []appconfig.Entry) error
	Invalidate()
}

// UserCounter reports how many accounts exist.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// UserCreator registers accounts.
type UserCreator interface {
	Create(ctx context.Context, in user.CreateInput) (*user.User, error)
}

// Verifier checks that credentials can reach the storage API. It returns the number
// of visible buckets.
type Verifier interface {
	Verify(ctx context.Context, creds appconfig.Credentials) (int, error)
}

// Status is the current setup progress.
type Status struct {
	SetupCompleted bool `json:"setupCompleted"`
	HasAdmin       bool `json:"hasAdmin"`
	HasCredentials bool `json:"hasCredentials"`
}

// AdminInput creates the first account.
type AdminInput struct {
	Name     string
	Email    string
	Password string
}

// R2Input carries the storage credentials. Reconfigure allows replacing them after
// setup completed and is set only for authenticated callers.
type R2Input struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	APIToken        string
	Reconfigure     bool
}

// R2Result reports the connectivity check.
type R2Result struct {
	BucketCount int `json:"bucketCount"`
}

// Service runs the setup steps. Steps are serialised so concurrent requests cannot
// create two first admins.
type Service struct {
	mu       sync.Mutex
	config   ConfigStore
	counter  UserCounter
	users    UserCreator
	verifier Verifier
	log      zerolog.Logger
}

func NewService(config ConfigStore, counter UserCounter, users UserCreator, verifier Verifier, log zerolog.Logger) *Service {
	return &Service{
		config:   config,
		counter:  counter,
		users:    users,
		verifier: verifier,
		log:      log.With().Str("component", "setup-service").Logger(),
	}
}

// Status reports setup progress.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	values, err := s.config.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.counter.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		SetupCompleted: values[appconfig.KeySetupCompleted] == "true",
		HasAdmin:       count > 0,
		HasCredentials: appconfig.CredentialsFrom(values).Complete(),
	}, nil
}

// Completed reports whether setup finished.
func (s *Service) Completed(ctx context.Context) (bool, error) {
	values, err := s.config.Resolve(ctx)
	if err != nil {
		return false, err
	}
	return values[appconfig.KeySetupCompleted] == "true", nil
}

// CreateAdmin creates the first account. It fails once any account exists.
func (s *Service) CreateAdmin(ctx context.Context, in AdminInput) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.counter.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"an admin account already exists", nil, "b1e7c4a0-9f23-4d86-a5c2-8e0d3f6b7a19")
	}

	u, err := s.users.Create(ctx, user.CreateInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     user.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID).Msg("admin account created")
	return u, nil
}

// ConfigureR2 checks the credentials against the storage API and persists them,
// marking setup as completed.
func (s *Service) ConfigureR2(ctx context.Context, in R2Input) (*R2Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds := appconfig.Credentials{
		AccountID:       strings.TrimSpace(in.AccountID),
		AccessKeyID:     strings.TrimSpace(in.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(in.SecretAccessKey),
		Endpoint:        strings.TrimRight(strings.TrimSpace(in.Endpoint), "/"),
		APIToken:        strings.TrimSpace(in.APIToken),
	}
	if creds.AccountID == "" || !creds.Complete() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"accountId, accessKeyId and secretAccessKey are required", nil, "4c0a8e62-d7b1-4f3e-9a5d-61e2b8f0c7d4")
	}

	count, err := s.counter.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"create the admin account first", nil, "7f5d1b3c-2e86-4a09-b4f7-c3a9e0d16852")
	}

	done, err := s.Completed(ctx)
	if err != nil {
		return nil, err
	}
	if done && !in.Reconfigure {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"setup is already completed", nil, "a3d96f27-51c8-4e0b-8d2a-f74b1e6c9035")
	}

	buckets, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"could not connect to R2 with the supplied credentials", err, "d80b2e95-6a4f-4c17-b3e8-09f5c1a7d264")
	}

	entries := append(creds.Entries(), appconfig.Entry{Key: appconfig.KeySetupCompleted, Value: "true"})
	if err := s.config.Save(ctx, entries); err != nil {
		return nil, err
	}
	s.config.Invalidate()

	s.log.Info().Str("account_id", redact.Secret(creds.AccountID)).Int("buckets", buckets).Msg("storage credentials configured")
	return &R2Result{BucketCount: buckets}, nil
}
