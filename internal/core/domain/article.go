package domain

import "time"

// DateLayout is the wire format of an article's publication date.
const DateLayout = "2006-01-02"

const (
	TitleMinLength = 3
	TitleMaxLength = 255
)

// Article is a content record owned by the user that created it.
type Article struct {
	ID              int64     `json:"id" bson:"_id"`
	Title           string    `json:"title" bson:"title"`
	Description     string    `json:"description" bson:"description"`
	PublicationDate time.Time `json:"publication_date" bson:"publication_date"`
	AuthorID        int64     `json:"author_id" bson:"author_id"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// OwnedBy reports whether userID may modify or delete the article.
func (a *Article) OwnedBy(userID int64) bool {
	return a != nil && userID > 0 && a.AuthorID == userID
}

// TruncateDate drops the clock part so publication dates compare as calendar days.
func TruncateDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
