package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

type stubArticleService struct {
	createFn func(ctx context.Context, in ports.CreateArticleInput) (*ports.ArticleView, error)
	getFn    func(ctx context.Context, id int64) (*ports.ArticleView, error)
	listFn   func(ctx context.Context, in ports.ListArticlesInput) (*ports.ArticlePage, error)
	updateFn func(ctx context.Context, in ports.UpdateArticleInput) (*ports.ArticleView, error)
	deleteFn func(ctx context.Context, id, requesterID int64) error
}

func (s *stubArticleService) CreateArticle(ctx context.Context, in ports.CreateArticleInput) (*ports.ArticleView, error) {
	return s.createFn(ctx, in)
}

func (s *stubArticleService) GetArticle(ctx context.Context, id int64) (*ports.ArticleView, error) {
	return s.getFn(ctx, id)
}

func (s *stubArticleService) ListArticles(ctx context.Context, in ports.ListArticlesInput) (*ports.ArticlePage, error) {
	return s.listFn(ctx, in)
}

func (s *stubArticleService) UpdateArticle(ctx context.Context, in ports.UpdateArticleInput) (*ports.ArticleView, error) {
	return s.updateFn(ctx, in)
}

func (s *stubArticleService) DeleteArticle(ctx context.Context, id, requesterID int64) error {
	return s.deleteFn(ctx, id, requesterID)
}

func withPrincipal(c echo.Context, id int64) echo.Context {
	c.Set(PrincipalKey, domain.Principal{ID: id, Email: "owner@x.com"})
	return c
}

func sampleView() *ports.ArticleView {
	return &ports.ArticleView{
		ID:              1,
		Title:           "Hello",
		Description:     "body",
		PublicationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AuthorID:        1,
	}
}

func TestArticleHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	h := NewArticleHandler(&stubArticleService{
		createFn: func(_ context.Context, in ports.CreateArticleInput) (*ports.ArticleView, error) {
			if in.AuthorID != 1 {
				t.Fatalf("author must come from the principal, got %d", in.AuthorID)
			}
			if in.Title != "Hello" || !in.PublicationDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected input %+v", in)
			}
			return sampleView(), nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/articles",
		`{"title":"Hello","description":"body","publication_date":"2024-01-01","author_id":99}`)
	if err := h.Create(withPrincipal(c, 1)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp articleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != 1 || resp.PublicationDate != "2024-01-01" || resp.AuthorID != 1 {
		t.Fatalf("unexpected payload %+v", resp)
	}
}

func TestArticleHandler_Create_RequiresPrincipal(t *testing.T) {
	e := newTestEcho()
	h := NewArticleHandler(&stubArticleService{})

	c, _ := jsonContext(e, http.MethodPost, "/articles", `{"title":"Hello","publication_date":"2024-01-01"}`)
	expectHTTPError(t, h.Create(c), http.StatusUnauthorized)
}

func TestArticleHandler_Create_InvalidBody(t *testing.T) {
	e := newTestEcho()
	h := NewArticleHandler(&stubArticleService{
		createFn: func(context.Context, ports.CreateArticleInput) (*ports.ArticleView, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	cases := map[string]string{
		"malformed":    `{"title":`,
		"short title":  `{"title":"Hi","publication_date":"2024-01-01"}`,
		"missing date": `{"title":"Hello"}`,
		"bad date":     `{"title":"Hello","publication_date":"01/02/2024"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := jsonContext(e, http.MethodPost, "/articles", body)
			expectHTTPError(t, h.Create(withPrincipal(c, 1)), http.StatusBadRequest)
		})
	}
}

func TestArticleHandler_Get(t *testing.T) {
	e := newTestEcho()
	h := NewArticleHandler(&stubArticleService{
		getFn: func(_ context.Context, id int64) (*ports.ArticleView, error) {
			if id == 1 {
				return sampleView(), nil
			}
			return nil, domain.ErrArticleNotFound
		},
	})

	c, rec := jsonContext(e, http.MethodGet, "/articles/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = jsonContext(e, http.MethodGet, "/articles/2", "")
	c.SetParamNames("id")
	c.SetParamValues("2")
	if err := h.Get(c); !errors.Is(err, domain.ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleHandler_InvalidID(t *testing.T) {
	e := newTestEcho()
	h := NewArticleHandler(&stubArticleService{})

	for _, raw := range []string{"abc", "0", "-4", "1.5"} {
		c, _ := jsonContext(e, http.MethodGet, "/articles/"+raw, "")
		c.SetParamNames("id")
		c.SetParamValues(raw)
		expectHTTPError(t, h.Get(c), http.StatusBadRequest)
	}
}

func TestArticleHandler_List_ParsesQuery(t *testing.T) {
	e := newTestEcho()
	h := NewArticleHandler(&stubArticleService{
		listFn: func(_ context.Context, in ports.ListArticlesInput) (*ports.ArticlePage, error) {
			if in.Page != 2 || in.Limit != 5 || in.AuthorID != 7 {
				t.Fatalf("unexpected paging input %+v", in)
			}
			if !in.PublishedFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || !in.PublishedTo.IsZero() {
				t.Fatalf("unexpected date input %+v", in)
			}
			return &ports.ArticlePage{Items: []ports.ArticleView{*sampleView()}, Total: 6, Page: 2, Limit: 5, TotalPages: 2}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/articles?page=2&limit=5&author_id=7&published_from=2024-01-01", nil)
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp articlePageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Items) != 1 || resp.Total != 6 || resp.TotalPages != 2 {
		t.Fatalf("unexpected payload %+v", resp)
	}
}

func TestArticleHandler_List_InvalidQuery(t *testing.T) {
	e := newTestEcho()
	h := NewArticleHandler(&stubArticleService{
		listFn: func(context.Context, ports.ListArticlesInput) (*ports.ArticlePage, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	for _, q := range []string{"page=abc", "limit=-1", "published_to=yesterday", "author_id=0x"} {
		req := httptest.NewRequest(http.MethodGet, "/articles?"+q, nil)
		rec := httptest.NewRecorder()
		expectHTTPError(t, h.List(e.NewContext(req, rec)), http.StatusBadRequest)
	}
}

func TestArticleHandler_Update_PassesPartialFields(t *testing.T) {
	e := newTestEcho()
	h := NewArticleHandler(&stubArticleService{
		updateFn: func(_ context.Context, in ports.UpdateArticleInput) (*ports.ArticleView, error) {
			if in.ID != 1 || in.RequesterID != 2 {
				t.Fatalf("unexpected ids %+v", in)
			}
			if in.Title == nil || *in.Title != "New title" {
				t.Fatalf("expected title to be set")
			}
			if in.Description != nil || in.PublicationDate != nil {
				t.Fatalf("absent fields must stay nil: %+v", in)
			}
			return nil, domain.ErrForbidden
		},
	})

	c, _ := jsonContext(e, http.MethodPut, "/articles/1", `{"title":"New title"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Update(withPrincipal(c, 2)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestArticleHandler_Delete(t *testing.T) {
	e := newTestEcho()
	var gotID, gotRequester int64
	h := NewArticleHandler(&stubArticleService{
		deleteFn: func(_ context.Context, id, requesterID int64) error {
			gotID, gotRequester = id, requesterID
			return nil
		},
	})

	c, rec := jsonContext(e, http.MethodDelete, "/articles/4", "")
	c.SetParamNames("id")
	c.SetParamValues("4")
	if err := h.Delete(withPrincipal(c, 9)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}
	if gotID != 4 || gotRequester != 9 {
		t.Fatalf("unexpected delete args id=%d requester=%d", gotID, gotRequester)
	}
}
