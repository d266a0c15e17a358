package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel/attribute"

	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ArticleService implements the article use cases. Reads go through the
// cache; every successful write clears it before returning.
type ArticleService struct {
	repo   ports.ArticleRepository
	cache  ports.ArticleCache
	logger zerolog.Logger
}

func NewArticleService(repo ports.ArticleRepository, cache ports.ArticleCache, logger zerolog.Logger) *ArticleService {
	return &ArticleService{repo: repo, cache: cache, logger: logger}
}

// CreateArticle stores a new article owned by input.AuthorID.
func (s *ArticleService) CreateArticle(ctx context.Context, input ports.CreateArticleInput) (*ports.ArticleView, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.CreateArticle")
	defer span.End()

	if input.AuthorID <= 0 {
		return nil, fmt.Errorf("%w: author is required", domain.ErrInvalidInput)
	}
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if input.PublicationDate.IsZero() {
		return nil, fmt.Errorf("%w: publication date is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	article := &domain.Article{
		Title:           title,
		Description:     input.Description,
		PublicationDate: domain.TruncateDate(input.PublicationDate),
		AuthorID:        input.AuthorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, article); err != nil {
		s.logger.Error().Err(err).Int64("author_id", input.AuthorID).Msg("failed to create article")
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.cache.InvalidateAll(ctx)

	span.SetAttributes(attribute.Int64("article.id", article.ID))
	s.logger.Info().Int64("article_id", article.ID).Int64("author_id", article.AuthorID).Msg("article created")

	view := toView(article)
	return &view, nil
}

// GetArticle returns a single article, served from the cache when possible.
func (s *ArticleService) GetArticle(ctx context.Context, id int64) (*ports.ArticleView, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.GetArticle")
	defer span.End()

	if id <= 0 {
		return nil, domain.ErrArticleNotFound
	}

	var view ports.ArticleView
	err := s.cache.GetOrPopulate(ctx, articleKey(id), &view, func(ctx context.Context) (any, error) {
		a, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return toView(a), nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListArticles returns one page of articles matching the filter.
func (s *ArticleService) ListArticles(ctx context.Context, input ports.ListArticlesInput) (*ports.ArticlePage, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.ListArticles")
	defer span.End()

	filter, err := normalizeListInput(input)
	if err != nil {
		return nil, err
	}

	var page ports.ArticlePage
	err = s.cache.GetOrPopulate(ctx, articleListKey(filter), &page, func(ctx context.Context) (any, error) {
		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list articles: %w", err)
		}
		views := make([]ports.ArticleView, len(items))
		for i, a := range items {
			views[i] = toView(a)
		}
		return ports.ArticlePage{
			Items:      views,
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages(total, filter.Limit),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateArticle applies a partial update. Existence and ownership are checked
// against the store before anything is written.
func (s *ArticleService) UpdateArticle(ctx context.Context, input ports.UpdateArticleInput) (*ports.ArticleView, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.UpdateArticle")
	defer span.End()

	article, err := s.ownedArticle(ctx, input.ID, input.RequesterID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		article.Title = title
	}
	if input.Description != nil {
		article.Description = *input.Description
	}
	if input.PublicationDate != nil {
		if input.PublicationDate.IsZero() {
			return nil, fmt.Errorf("%w: publication date is required", domain.ErrInvalidInput)
		}
		article.PublicationDate = domain.TruncateDate(*input.PublicationDate)
	}
	article.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	s.cache.InvalidateAll(ctx)

	s.logger.Info().Int64("article_id", article.ID).Msg("article updated")

	view := toView(article)
	return &view, nil
}

// DeleteArticle removes an article owned by requesterID.
func (s *ArticleService) DeleteArticle(ctx context.Context, id, requesterID int64) error {
	ctx, span := tracer.Start(ctx, "ArticleService.DeleteArticle")
	defer span.End()

	if _, err := s.ownedArticle(ctx, id, requesterID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	s.cache.InvalidateAll(ctx)

	s.logger.Info().Int64("article_id", id).Int64("requester_id", requesterID).Msg("article deleted")
	return nil
}

// ownedArticle loads the article straight from the store and applies the
// ownership policy. It performs no writes.
func (s *ArticleService) ownedArticle(ctx context.Context, id, requesterID int64) (*domain.Article, error) {
	if id <= 0 {
		return nil, domain.ErrArticleNotFound
	}
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !article.OwnedBy(requesterID) {
		s.logger.Warn().Int64("article_id", id).Int64("requester_id", requesterID).Msg("ownership check failed")
		return nil, domain.ErrForbidden
	}
	return article, nil
}

func normalizeListInput(in ports.ListArticlesInput) (ports.ListArticlesFilter, error) {
	page, limit := in.Page, in.Limit
	if page == 0 {
		page = defaultPage
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if page < 1 || limit < 1 {
		return ports.ListArticlesFilter{}, fmt.Errorf("%w: page and limit must be at least 1", domain.ErrInvalidInput)
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page > math.MaxInt/limit {
		return ports.ListArticlesFilter{}, fmt.Errorf("%w: page is out of range", domain.ErrInvalidInput)
	}
	if in.AuthorID < 0 {
		return ports.ListArticlesFilter{}, fmt.Errorf("%w: author_id must be positive", domain.ErrInvalidInput)
	}

	from, to := domain.TruncateDate(in.PublishedFrom), domain.TruncateDate(in.PublishedTo)
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return ports.ListArticlesFilter{}, fmt.Errorf("%w: published_to is before published_from", domain.ErrInvalidInput)
	}

	return ports.ListArticlesFilter{
		PublishedFrom: from,
		PublishedTo:   to,
		AuthorID:      in.AuthorID,
		Page:          page,
		Limit:         limit,
	}, nil
}

func validateTitle(title string) error {
	n := len([]rune(title))
	if n < domain.TitleMinLength || n > domain.TitleMaxLength {
		return fmt.Errorf("%w: title must be between %d and %d characters",
			domain.ErrInvalidInput, domain.TitleMinLength, domain.TitleMaxLength)
	}
	return nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func toView(a *domain.Article) ports.ArticleView {
	return ports.ArticleView{
		ID:              a.ID,
		Title:           a.Title,
		Description:     a.Description,
		PublicationDate: a.PublicationDate.UTC(),
		AuthorID:        a.AuthorID,
	}
}

// --- Cache keys ---

func articleKey(id int64) string {
	return "id:" + strconv.FormatInt(id, 10)
}

// articleListKey hashes the normalized filter tuple so equal queries share an entry.
func articleListKey(f ports.ListArticlesFilter) string {
	var buf [42]byte
	binary.BigEndian.PutUint64(buf[0:], uint64(f.Page))
	binary.BigEndian.PutUint64(buf[8:], uint64(f.Limit))
	binary.BigEndian.PutUint64(buf[16:], uint64(f.PublishedFrom.Unix()))
	binary.BigEndian.PutUint64(buf[24:], uint64(f.PublishedTo.Unix()))
	binary.BigEndian.PutUint64(buf[32:], uint64(f.AuthorID))
	if !f.PublishedFrom.IsZero() {
		buf[40] = 1
	}
	if !f.PublishedTo.IsZero() {
		buf[41] = 1
	}
	return fmt.Sprintf("list:%016x", xxh3.Hash(buf[:]))
}
