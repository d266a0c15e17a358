package handler

// --- Request / Response types ---

type createArticleRequest struct {
	Title           string `json:"title"            validate:"required,min=3,max=255"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date" validate:"required"`
}

// updateArticleRequest is a partial update: absent fields stay unchanged.
type updateArticleRequest struct {
	Title           *string `json:"title"            validate:"omitempty,min=3,max=255"`
	Description     *string `json:"description"`
	PublicationDate *string `json:"publication_date" validate:"omitempty,min=1"`
}

type listArticlesQuery struct {
	Page          int    `query:"page"           validate:"omitempty,min=1"`
	Limit         int    `query:"limit"          validate:"omitempty,min=1"`
	AuthorID      int64  `query:"author_id"      validate:"omitempty,min=1"`
	PublishedFrom string `query:"published_from"`
	PublishedTo   string `query:"published_to"`
}

// Response-only types owned by the transport layer.

type articleResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
	AuthorID        int64  `json:"author_id"`
}

type articlePageResponse struct {
	Items      []articleResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
