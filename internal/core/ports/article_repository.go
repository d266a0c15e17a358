package ports

import (
	"context"
	"time"

	"github.com/inkwell/content-api/internal/core/domain"
)

// ListArticlesFilter carries the query parameters for listing articles.
// Zero values impose no constraint.
type ListArticlesFilter struct {
	PublishedFrom time.Time // publication_date >= PublishedFrom
	PublishedTo   time.Time // publication_date <= PublishedTo
	AuthorID      int64
	Page          int // 1-based
	Limit         int
}

// Offset returns the number of rows to skip for the filter's page.
func (f ListArticlesFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	// Create assigns a.ID. A missing author is reported as domain.ErrUserNotFound.
	Create(ctx context.Context, a *domain.Article) error
	FindByID(ctx context.Context, id int64) (*domain.Article, error)
	// List returns one page of articles ordered by id and the total match count.
	List(ctx context.Context, filter ListArticlesFilter) ([]*domain.Article, int64, error)
	Update(ctx context.Context, a *domain.Article) error
	Delete(ctx context.Context, id int64) error
}
