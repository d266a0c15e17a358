package security

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell/content-api/internal/core/domain"
)

type countingScheduler struct{ calls int }

func (s *countingScheduler) Submit(_ context.Context, job func()) error {
	s.calls++
	job()
	return nil
}

type refusingScheduler struct{}

func (refusingScheduler) Submit(ctx context.Context, _ func()) error {
	return context.Canceled
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	sched := &countingScheduler{}
	h := NewBcryptHasher(bcrypt.MinCost, sched)

	hash, err := h.Hash(context.Background(), "secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret1" {
		t.Fatalf("hash equals plaintext")
	}
	if err := h.Compare(context.Background(), hash, "secret1"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if sched.calls != 2 {
		t.Fatalf("expected 2 scheduled jobs, got %d", sched.calls)
	}
}

func TestBcryptHasher_SaltsEveryHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)

	a, _ := h.Hash(context.Background(), "secret1")
	b, _ := h.Hash(context.Background(), "secret1")
	if a == b {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestBcryptHasher_Mismatch(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)
	hash, _ := h.Hash(context.Background(), "secret1")

	err := h.Compare(context.Background(), hash, "wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestBcryptHasher_OverlongPasswordIsRejected(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)
	hash, _ := h.Hash(context.Background(), "secret1")

	err := h.Compare(context.Background(), hash, strings.Repeat("p", 73))
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)

	err := h.Compare(context.Background(), "x", "secret1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestBcryptHasher_SchedulerRejects(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, refusingScheduler{})

	if _, err := h.Hash(context.Background(), "secret1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewBcryptHasher(99, nil)
	if h.cost != DefaultCost {
		t.Fatalf("expected cost %d, got %d", DefaultCost, h.cost)
	}
}
