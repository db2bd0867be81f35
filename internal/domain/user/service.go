package user

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"r2-dashboard/internal/utils/idgen"
	"r2-dashboard/internal/utils/platformerrors"
	"r2-dashboard/internal/utils/redact"
)

const minPasswordLength = 8

// CreateInput describes a new account.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateInput changes the set fields of an account.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

// Service handles account lifecycle and password checks.
type Service struct {
	repo Repository
	cost int
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		cost: bcrypt.DefaultCost,
		log:  log.With().Str("component", "user-service").Logger(),
	}
}

// Create registers an account. The role defaults to admin.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	email := NormalizeEmail(in.Email)
	if err := validateEmail(ctx, email); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"email is already registered", nil, "c81f3e5a-0d72-4b96-a4e3-17b5d9c2f086")
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = RoleAdmin
	}
	u := &User{
		ID:           idgen.New("usr"),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID).Str("role", u.Role).Msg("user created")
	return u, nil
}

// Authenticate returns the account matching email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("email", redact.Email(NormalizeEmail(email))).Msg("login rejected")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			"invalid email or password", nil, "5f9a2c7e-b341-4d08-9e6a-c2d70f1b83e5")
	}
	return u, nil
}

// Get returns the account with id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies in to the account with id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		if err := validateEmail(ctx, email); err != nil {
			return nil, err
		}
		if email != u.Email {
			other, err := s.repo.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != u.ID {
				return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
					"email is already registered", nil, "0e4b7d19-a6c3-4f52-8b1e-d93a5c70f2b4")
			}
		}
		u.Email = email
	}
	if in.Password != nil {
		hash, err := s.hashPassword(ctx, *in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the account with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *Service) hashPassword(ctx context.Context, password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"password must be at least 8 characters", nil, "9d3c6f0a-72e5-4b18-a0d4-e6f81b29c537")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"password cannot be hashed", err, "47a1e8d2-3c9b-4f60-b7e5-0a2d6c8f1e93")
	}
	return string(hash), nil
}

func validateEmail(ctx context.Context, email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"a valid email is required", nil, "e2b95c04-7f18-4a3d-96c1-5d8e0a7b4f26")
	}
	return nil
}
