package ports

import (
	"context"

	"github.com/inkwell/content-api/internal/core/domain"
)

// UserRepository persists identities. Implementations must enforce email
// uniqueness and report a duplicate as domain.ErrUserExists.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
