package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkwell/content-api/internal/core/domain"
)

var testUser = &domain.User{ID: 7, Email: "a@x.com", PasswordHash: "$2a$10$hash"}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	iss := NewJWTIssuer("test-secret", time.Hour, "")

	token, err := iss.Issue(testUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "a@x.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected a token id")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != time.Hour {
		t.Fatalf("expected 1h lifetime, got %s", got)
	}
}

func TestJWTIssuer_TokenOmitsPasswordHash(t *testing.T) {
	iss := NewJWTIssuer("test-secret", time.Hour, "")
	token, _ := iss.Issue(testUser)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("parse: %v", err)
	}
	for k, v := range claims {
		if s, ok := v.(string); ok && strings.Contains(s, testUser.PasswordHash) {
			t.Fatalf("claim %q leaks the password hash", k)
		}
	}
}

func TestJWTIssuer_DistinctTokensPerIssue(t *testing.T) {
	iss := NewJWTIssuer("test-secret", time.Hour, "")
	a, _ := iss.Issue(testUser)
	b, _ := iss.Issue(testUser)
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
}

func TestJWTIssuer_RejectsWrongSecret(t *testing.T) {
	token, _ := NewJWTIssuer("one", time.Hour, "").Issue(testUser)

	_, err := NewJWTIssuer("two", time.Hour, "").Verify(token)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTIssuer_RejectsExpired(t *testing.T) {
	iss := NewJWTIssuer("test-secret", time.Minute, "")
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _ := iss.Issue(testUser)

	iss.now = time.Now
	if _, err := iss.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTIssuer_RejectsMissingExpiry(t *testing.T) {
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"iss": DefaultIssuer,
	}).SignedString([]byte("test-secret"))

	_, err := NewJWTIssuer("test-secret", time.Hour, "").Verify(token)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTIssuer_RejectsOtherAlgorithms(t *testing.T) {
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "7",
		"iss": DefaultIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))

	_, err := NewJWTIssuer("test-secret", time.Hour, "").Verify(token)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTIssuer_RejectsWrongIssuer(t *testing.T) {
	token, _ := NewJWTIssuer("test-secret", time.Hour, "someone-else").Issue(testUser)

	_, err := NewJWTIssuer("test-secret", time.Hour, "").Verify(token)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTIssuer_RejectsGarbage(t *testing.T) {
	iss := NewJWTIssuer("test-secret", time.Hour, "")
	for _, raw := range []string{"not-a-token", "a.b.c", ""} {
		if _, err := iss.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%q: expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestJWTIssuer_IssueRequiresID(t *testing.T) {
	if _, err := NewJWTIssuer("s", time.Hour, "").Issue(&domain.User{Email: "a@x.com"}); err == nil {
		t.Fatalf("expected error for user without id")
	}
}
