package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateArticleInput(req createArticleRequest, authorID int64) (ports.CreateArticleInput, error) {
	date, err := parseDate("publication_date", req.PublicationDate)
	if err != nil {
		return ports.CreateArticleInput{}, err
	}
	return ports.CreateArticleInput{
		Title:           req.Title,
		Description:     req.Description,
		PublicationDate: date,
		AuthorID:        authorID,
	}, nil
}

func toUpdateArticleInput(id int64, req updateArticleRequest, requesterID int64) (ports.UpdateArticleInput, error) {
	in := ports.UpdateArticleInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		RequesterID: requesterID,
	}
	if req.PublicationDate != nil {
		date, err := parseDate("publication_date", *req.PublicationDate)
		if err != nil {
			return ports.UpdateArticleInput{}, err
		}
		in.PublicationDate = &date
	}
	return in, nil
}

func toListArticlesInput(q listArticlesQuery) (ports.ListArticlesInput, error) {
	in := ports.ListArticlesInput{Page: q.Page, Limit: q.Limit, AuthorID: q.AuthorID}
	var err error
	if q.PublishedFrom != "" {
		if in.PublishedFrom, err = parseDate("published_from", q.PublishedFrom); err != nil {
			return ports.ListArticlesInput{}, err
		}
	}
	if q.PublishedTo != "" {
		if in.PublishedTo, err = parseDate("published_to", q.PublishedTo); err != nil {
			return ports.ListArticlesInput{}, err
		}
	}
	return in, nil
}

// parseDate accepts a calendar date (2006-01-02) or a full RFC 3339 timestamp.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(domain.DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, echo.NewHTTPError(http.StatusBadRequest,
		fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
}

// --- Service result → HTTP response ---

func toArticleResponse(v *ports.ArticleView) articleResponse {
	return articleResponse{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		PublicationDate: v.PublicationDate.UTC().Format(domain.DateLayout),
		AuthorID:        v.AuthorID,
	}
}

func toArticlePageResponse(p *ports.ArticlePage) articlePageResponse {
	items := make([]articleResponse, len(p.Items))
	for i := range p.Items {
		items[i] = toArticleResponse(&p.Items[i])
	}
	return articlePageResponse{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}
