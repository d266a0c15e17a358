package security

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell/content-api/internal/core/domain"
)

// DefaultCost matches the cost used for all stored hashes unless configured.
const DefaultCost = 10

// Scheduler runs CPU-heavy work off the request goroutine and waits for it.
type Scheduler interface {
	Submit(ctx context.Context, job func()) error
}

// BcryptHasher hashes and verifies passwords with bcrypt. When a scheduler is
// set every hash and comparison is executed through it.
type BcryptHasher struct {
	cost  int
	sched Scheduler
}

func NewBcryptHasher(cost int, sched Scheduler) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost, sched: sched}
}

func (h *BcryptHasher) Hash(ctx context.Context, plain string) (string, error) {
	var (
		out []byte
		err error
	)
	if runErr := h.run(ctx, func() {
		out, err = bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	}); runErr != nil {
		return "", runErr
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(out), nil
}

func (h *BcryptHasher) Compare(ctx context.Context, hash, plain string) error {
	var err error
	if runErr := h.run(ctx, func() {
		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	}); runErr != nil {
		return runErr
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword),
		errors.Is(err, bcrypt.ErrHashTooShort),
		errors.Is(err, bcrypt.ErrPasswordTooLong):
		return domain.ErrInvalidCredentials
	default:
		return fmt.Errorf("bcrypt compare: %w", err)
	}
}

func (h *BcryptHasher) run(ctx context.Context, job func()) error {
	if h.sched == nil {
		job()
		return nil
	}
	return h.sched.Submit(ctx, job)
}
