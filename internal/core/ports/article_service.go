package ports

import (
	"context"
	"time"
)

// CreateArticleInput carries the fields of a new article. AuthorID is taken
// from the authenticated principal, never from the request body.
type CreateArticleInput struct {
	Title           string
	Description     string
	PublicationDate time.Time
	AuthorID        int64
}

// UpdateArticleInput is a partial update: nil fields are left unchanged.
type UpdateArticleInput struct {
	ID              int64
	Title           *string
	Description     *string
	PublicationDate *time.Time
	RequesterID     int64
}

// ListArticlesInput carries all parameters for the list endpoint.
type ListArticlesInput struct {
	Page          int
	Limit         int
	PublishedFrom time.Time
	PublishedTo   time.Time
	AuthorID      int64
}

// ArticleView is the read model returned to callers and stored in the cache.
type ArticleView struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	PublicationDate time.Time `json:"publication_date"`
	AuthorID        int64     `json:"author_id"`
}

// ArticlePage is one page of a listing.
type ArticlePage struct {
	Items      []ArticleView `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

type ArticleService interface {
	CreateArticle(ctx context.Context, input CreateArticleInput) (*ArticleView, error)
	GetArticle(ctx context.Context, id int64) (*ArticleView, error)
	ListArticles(ctx context.Context, input ListArticlesInput) (*ArticlePage, error)
	UpdateArticle(ctx context.Context, input UpdateArticleInput) (*ArticleView, error)
	DeleteArticle(ctx context.Context, id, requesterID int64) error
}

// ArticleCache is the read-through cache in front of the article store.
// Values are copied into dst, so callers never share decoded state.
type ArticleCache interface {
	GetOrPopulate(ctx context.Context, key string, dst any, loader func(ctx context.Context) (any, error)) error
	InvalidateAll(ctx context.Context)
}
