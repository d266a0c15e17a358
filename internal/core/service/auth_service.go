package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

const (
	passwordMinLength = 6
	// bcrypt only accepts passwords up to 72 bytes.
	passwordMaxBytes = 72
)

var tracer = otel.Tracer("content-api/service")

// AuthService implements registration, login and bearer token resolution.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger

	dummyMu sync.Mutex
	dummy   string
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a new identity and returns a token for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	email = domain.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", created.ID))
	s.log.Info().Int64("user_id", created.ID).Msg("user registered")

	return &ports.AuthResult{Token: token, User: created}, nil
}

// Login checks the credentials and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Debug().Int64("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{Token: token, User: user}, nil
}

// VerifyCredentials resolves email/password to a user. An unknown email and a
// wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("verify credentials: %w", err)
		}
		// Burn a comparison so unknown emails cost the same as wrong passwords.
		_ = s.hasher.Compare(ctx, s.dummyHash(ctx), password)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(ctx, user.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}
	return user, nil
}

// Authenticate resolves a bearer token to a live principal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrMissingCredentials
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		span.RecordError(err)
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Int64("user_id", claims.UserID).Msg("token for removed user rejected")
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	p := user.Principal()
	span.SetAttributes(attribute.Int64("user.id", p.ID))
	return &p, nil
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email must be a valid address", domain.ErrInvalidInput)
	}
	if len(password) < passwordMinLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, passwordMinLength)
	}
	if len(password) > passwordMaxBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, passwordMaxBytes)
	}
	return nil
}

// dummyHash returns a hash of a random string that no user can present. It is
// built on first use and retried until it succeeds.
func (s *AuthService) dummyHash(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummy == "" {
		h, err := s.hasher.Hash(context.WithoutCancel(ctx), uuid.NewString())
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare dummy password hash")
			return ""
		}
		s.dummy = h
	}
	return s.dummy
}
