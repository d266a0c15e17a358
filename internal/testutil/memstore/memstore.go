// Package memstore provides in-memory user and article repositories for
// tests. They honour the same contracts as the database-backed stores.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

type Users struct {
	mu     sync.Mutex
	byID   map[int64]*domain.User
	nextID int64
}

func NewUsers() *Users {
	return &Users{byID: make(map[int64]*domain.User)}
}

func (r *Users) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := *user
	created.ID = r.nextID
	r.byID[created.ID] = &created
	out := created
	return &out, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *Users) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// Remove deletes a user, simulating an account removed after a token was issued.
func (r *Users) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

func (r *Users) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Users) exists(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok
}

// Articles is an in-memory ports.ArticleRepository. Reads and Writes count
// the calls that reached it.
type Articles struct {
	mu     sync.Mutex
	byID   map[int64]*domain.Article
	nextID int64
	users  *Users

	Reads  int
	Writes int
	// Err, when set, is returned by every call.
	Err error
}

// NewArticles creates an article store. When users is non-nil, Create checks
// that the author exists.
func NewArticles(users *Users) *Articles {
	return &Articles{byID: make(map[int64]*domain.Article), users: users}
}

func (r *Articles) Create(_ context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	if r.users != nil && !r.users.exists(a.AuthorID) {
		return domain.ErrUserNotFound
	}
	r.Writes++
	r.nextID++
	a.ID = r.nextID
	stored := *a
	r.byID[a.ID] = &stored
	return nil
}

func (r *Articles) FindByID(_ context.Context, id int64) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Reads++
	if r.Err != nil {
		return nil, r.Err
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	out := *a
	return &out, nil
}

func (r *Articles) List(_ context.Context, f ports.ListArticlesFilter) ([]*domain.Article, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Reads++
	if r.Err != nil {
		return nil, 0, r.Err
	}

	var matched []*domain.Article
	for _, a := range r.byID {
		if !f.PublishedFrom.IsZero() && a.PublicationDate.Before(f.PublishedFrom) {
			continue
		}
		if !f.PublishedTo.IsZero() && a.PublicationDate.After(f.PublishedTo) {
			continue
		}
		if f.AuthorID > 0 && a.AuthorID != f.AuthorID {
			continue
		}
		out := *a
		matched = append(matched, &out)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := f.Offset()
	if start >= len(matched) {
		return []*domain.Article{}, total, nil
	}
	end := start + f.Limit
	if f.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *Articles) Update(_ context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	cur, ok := r.byID[a.ID]
	if !ok {
		return domain.ErrArticleNotFound
	}
	r.Writes++
	updated := *a
	updated.AuthorID = cur.AuthorID
	r.byID[a.ID] = &updated
	return nil
}

func (r *Articles) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrArticleNotFound
	}
	r.Writes++
	delete(r.byID, id)
	return nil
}

// Snapshot returns a copy of the stored article, bypassing the counters.
func (r *Articles) Snapshot(id int64) (domain.Article, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.Article{}, false
	}
	return *a, true
}
