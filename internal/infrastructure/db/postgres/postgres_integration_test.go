//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
	"github.com/inkwell/content-api/internal/infrastructure/db/postgres"
	"github.com/inkwell/content-api/internal/testutil/containers"
)

type PostgresRepositorySuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	users    *postgres.UserRepository
	articles *postgres.ArticleRepository
}

func TestPostgresRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRepositorySuite))
}

func (s *PostgresRepositorySuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.pg.Pool))
	s.users = postgres.NewUserRepository(s.pg.Pool)
	s.articles = postgres.NewArticleRepository(s.pg.Pool)
}

func (s *PostgresRepositorySuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "articles", "users"))
}

func (s *PostgresRepositorySuite) createUser(email string) *domain.User {
	u, err := s.users.Create(context.Background(), &domain.User{
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	})
	s.Require().NoError(err)
	return u
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *PostgresRepositorySuite) TestMigrateIsIdempotent() {
	s.NoError(postgres.Migrate(context.Background(), s.pg.Pool))
}

func (s *PostgresRepositorySuite) TestUserCreateAndFind() {
	ctx := context.Background()
	u := s.createUser("a@x.com")
	s.Equal(int64(1), u.ID)

	byEmail, err := s.users.FindByEmail(ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
	s.Equal("hash", byEmail.PasswordHash)

	byID, err := s.users.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("a@x.com", byID.Email)

	_, err = s.users.FindByID(ctx, 999)
	s.ErrorIs(err, domain.ErrUserNotFound)
}

func (s *PostgresRepositorySuite) TestConcurrentDuplicateEmail() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var ok, conflict atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.users.Create(ctx, &domain.User{Email: "race@x.com", PasswordHash: "h", CreatedAt: time.Now()})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrUserExists):
				conflict.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), ok.Load())
	s.Equal(int32(goroutines-1), conflict.Load())
}

func (s *PostgresRepositorySuite) TestArticleLifecycle() {
	ctx := context.Background()
	author := s.createUser("a@x.com")

	a := &domain.Article{
		Title:           "First",
		Description:     "body",
		PublicationDate: day(2024, 3, 1),
		AuthorID:        author.ID,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	s.Require().NoError(s.articles.Create(ctx, a))
	s.Equal(int64(1), a.ID)

	got, err := s.articles.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("First", got.Title)
	s.True(got.PublicationDate.Equal(day(2024, 3, 1)))

	got.Title = "Renamed"
	s.Require().NoError(s.articles.Update(ctx, got))
	got, err = s.articles.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", got.Title)

	s.Require().NoError(s.articles.Delete(ctx, a.ID))
	_, err = s.articles.FindByID(ctx, a.ID)
	s.ErrorIs(err, domain.ErrArticleNotFound)
	s.ErrorIs(s.articles.Delete(ctx, a.ID), domain.ErrArticleNotFound)
	s.ErrorIs(s.articles.Update(ctx, got), domain.ErrArticleNotFound)
}

func (s *PostgresRepositorySuite) TestCreateWithUnknownAuthor() {
	err := s.articles.Create(context.Background(), &domain.Article{
		Title:           "Orphan",
		PublicationDate: day(2024, 1, 1),
		AuthorID:        42,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	})
	s.ErrorIs(err, domain.ErrUserNotFound)
}

func (s *PostgresRepositorySuite) TestListFiltersAndPaging() {
	ctx := context.Background()
	alice := s.createUser("alice@x.com")
	bob := s.createUser("bob@x.com")

	dates := []time.Time{day(2024, 1, 1), day(2024, 2, 1), day(2024, 3, 1), day(2024, 4, 1)}
	for i, d := range dates {
		author := alice.ID
		if i%2 == 1 {
			author = bob.ID
		}
		s.Require().NoError(s.articles.Create(ctx, &domain.Article{
			Title: "Article", PublicationDate: d, AuthorID: author,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}))
	}

	items, total, err := s.articles.List(ctx, ports.ListArticlesFilter{Page: 1, Limit: 3})
	s.Require().NoError(err)
	s.Equal(int64(4), total)
	s.Len(items, 3)
	s.Equal(int64(1), items[0].ID)

	items, total, err = s.articles.List(ctx, ports.ListArticlesFilter{Page: 2, Limit: 3})
	s.Require().NoError(err)
	s.Equal(int64(4), total)
	s.Len(items, 1)
	s.Equal(int64(4), items[0].ID)

	items, total, err = s.articles.List(ctx, ports.ListArticlesFilter{
		PublishedFrom: day(2024, 2, 1),
		PublishedTo:   day(2024, 3, 1),
		Page:          1,
		Limit:         10,
	})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(items, 2)

	items, total, err = s.articles.List(ctx, ports.ListArticlesFilter{AuthorID: bob.ID, Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	for _, a := range items {
		s.Equal(bob.ID, a.AuthorID)
	}

	items, total, err = s.articles.List(ctx, ports.ListArticlesFilter{AuthorID: 999, Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(items)
}
