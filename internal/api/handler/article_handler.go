package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-api/internal/api/metrics"
	"github.com/inkwell/content-api/internal/core/ports"
)

// ArticleHandler handles HTTP requests for article operations.
type ArticleHandler struct {
	service ports.ArticleService
}

func NewArticleHandler(service ports.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// Create handles POST /articles.
//
// @Summary      Create an article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createArticleRequest  true  "Article fields"
// @Success      201   {object}  articleResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input, err := toCreateArticleInput(req, principal.ID)
	if err != nil {
		return err
	}

	view, err := h.service.CreateArticle(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.ArticleWritesTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, toArticleResponse(view))
}

// Get handles GET /articles/:id.
//
// @Summary      Get an article by id
// @Tags         articles
// @Produce      json
// @Param        id   path      int  true  "Article id"
// @Success      200  {object}  articleResponse
// @Failure      404  {object}  map[string]string
// @Router       /articles/{id} [get]
func (h *ArticleHandler) Get(c echo.Context) error {
	id, err := articleID(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetArticle(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticleResponse(view))
}

// List handles GET /articles.
//
// @Summary      List articles
// @Tags         articles
// @Produce      json
// @Param        page            query     int     false  "Page (1-based)"
// @Param        limit           query     int     false  "Page size"
// @Param        published_from  query     string  false  "Inclusive lower bound (YYYY-MM-DD)"
// @Param        published_to    query     string  false  "Inclusive upper bound (YYYY-MM-DD)"
// @Param        author_id       query     int     false  "Author id"
// @Success      200             {object}  articlePageResponse
// @Failure      400             {object}  map[string]string
// @Router       /articles [get]
func (h *ArticleHandler) List(c echo.Context) error {
	var q listArticlesQuery
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		Int64("author_id", &q.AuthorID).
		String("published_from", &q.PublishedFrom).
		String("published_to", &q.PublishedTo).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input, err := toListArticlesInput(q)
	if err != nil {
		return err
	}

	page, err := h.service.ListArticles(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticlePageResponse(page))
}

// Update handles PUT /articles/:id.
//
// @Summary      Update an article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Article id"
// @Param        body  body      updateArticleRequest  true  "Fields to change"
// @Success      200   {object}  articleResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /articles/{id} [put]
func (h *ArticleHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := articleID(c)
	if err != nil {
		return err
	}

	var req updateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input, err := toUpdateArticleInput(id, req, principal.ID)
	if err != nil {
		return err
	}

	view, err := h.service.UpdateArticle(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.ArticleWritesTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, toArticleResponse(view))
}

// Delete handles DELETE /articles/:id.
//
// @Summary      Delete an article
// @Tags         articles
// @Security     BearerAuth
// @Param        id   path  int  true  "Article id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /articles/{id} [delete]
func (h *ArticleHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := articleID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteArticle(c.Request().Context(), id, principal.ID); err != nil {
		return err
	}

	metrics.ArticleWritesTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

// articleID parses the :id path parameter.
func articleID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return id, nil
}
