package ports

import (
	"context"
	"time"

	"github.com/inkwell/content-api/internal/core/domain"
)

// PasswordHasher produces and checks one-way salted password hashes.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	// Compare returns domain.ErrInvalidCredentials on mismatch.
	Compare(ctx context.Context, hash, plain string) error
}

// TokenClaims is the verified payload of a bearer token.
type TokenClaims struct {
	ID        string
	UserID    int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
	// Verify returns domain.ErrInvalidToken for any malformed, forged or expired token.
	Verify(token string) (*TokenClaims, error)
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// IdentityResolver turns a raw bearer token into the principal it was issued for.
// An empty token yields domain.ErrMissingCredentials.
type IdentityResolver interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}
