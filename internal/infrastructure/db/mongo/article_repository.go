package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

const collectionArticles = "articles"

type ArticleRepository struct {
	col   *mongo.Collection
	users *mongo.Collection
	seq   sequence
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{
		col:   db.Collection(collectionArticles),
		users: db.Collection(collectionUsers),
		seq:   newSequence(db, collectionArticles),
	}
}

// Create inserts a new article document and assigns its id. The author must
// exist.
func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.users.CountDocuments(ctx, bson.M{"_id": a.AuthorID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("check author: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	doc := *a
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	a.ID = id
	return nil
}

// FindByID retrieves an article by id.
func (r *ArticleRepository) FindByID(ctx context.Context, id int64) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Article
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	normalizeTimes(&a)
	return &a, nil
}

// List returns one page of matching articles ordered by id.
func (r *ArticleRepository) List(ctx context.Context, f ports.ListArticlesFilter) ([]*domain.Article, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := articleFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}
	if total == 0 {
		return []*domain.Article{}, 0, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.Article, 0, f.Limit)
	for cur.Next(ctx) {
		var a domain.Article
		if err := cur.Decode(&a); err != nil {
			return nil, 0, fmt.Errorf("decode article: %w", err)
		}
		normalizeTimes(&a)
		items = append(items, &a)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	return items, total, nil
}

// Update writes the mutable fields of a.
func (r *ArticleRepository) Update(ctx context.Context, a *domain.Article) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": bson.M{
		"title":            a.Title,
		"description":      a.Description,
		"publication_date": a.PublicationDate,
		"updated_at":       a.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the articles collection.
func (r *ArticleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "publication_date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func articleFilter(f ports.ListArticlesFilter) bson.M {
	filter := bson.M{}
	date := bson.M{}
	if !f.PublishedFrom.IsZero() {
		date["$gte"] = f.PublishedFrom
	}
	if !f.PublishedTo.IsZero() {
		date["$lte"] = f.PublishedTo
	}
	if len(date) > 0 {
		filter["publication_date"] = date
	}
	if f.AuthorID > 0 {
		filter["author_id"] = f.AuthorID
	}
	return filter
}

// normalizeTimes pins decoded times to UTC so both stores return identical values.
func normalizeTimes(a *domain.Article) {
	a.PublicationDate = a.PublicationDate.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
}
