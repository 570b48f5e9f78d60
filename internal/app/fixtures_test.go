package app_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reviewhub/internal/app"
	"reviewhub/internal/domain"
	"reviewhub/internal/storage/memory"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seeded() app.Rand { return rand.New(rand.NewPCG(1, 2)) }

// world is a memory store plus builders that bypass the services.
type world struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	users int
}

func newWorld(t *testing.T) *world {
	t.Helper()
	return &world{t: t, ctx: context.Background(), store: memory.New()}
}

func (w *world) category(name string) domain.Category {
	w.t.Helper()
	c, err := w.store.CreateCategory(w.ctx, domain.Category{Name: name, Slug: app.TaxonomySlug(name)})
	require.NoError(w.t, err)
	return c
}

func (w *world) subcategory(cat domain.Category, name string) domain.Subcategory {
	w.t.Helper()
	sc, err := w.store.CreateSubcategory(w.ctx, domain.Subcategory{CategoryID: cat.ID, Name: name, Slug: app.TaxonomySlug(name)})
	require.NoError(w.t, err)
	return sc
}

func (w *world) company(name string, cat domain.Category) domain.Company {
	w.t.Helper()
	c, err := w.store.CreateCompany(w.ctx, domain.Company{Name: name, Slug: app.CompanySlug(name), CategoryID: cat.ID})
	require.NoError(w.t, err)
	return c
}

func (w *world) user() domain.User {
	w.t.Helper()
	w.users++
	u, err := w.store.CreateUser(w.ctx, domain.User{
		Name:  fmt.Sprintf("User %d", w.users),
		Email: fmt.Sprintf("user%d@example.com", w.users),
	})
	require.NoError(w.t, err)
	return u
}

// review posts one review by a fresh user, minutesAgo before epoch.
func (w *world) review(c domain.Company, rating, minutesAgo int) domain.Review {
	w.t.Helper()
	r, err := w.store.CreateReview(w.ctx, domain.Review{
		CompanyID: c.ID,
		UserID:    w.user().ID,
		Rating:    rating,
		Title:     "Review",
		Comment:   "a perfectly ordinary comment",
		CreatedAt: epoch.Add(-time.Duration(minutesAgo) * time.Minute),
	})
	require.NoError(w.t, err)
	return r
}

func (w *world) reviews(c domain.Company, ratings ...int) []domain.Review {
	w.t.Helper()
	out := make([]domain.Review, len(ratings))
	for i, r := range ratings {
		out[i] = w.review(c, r, len(ratings)-i)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func (w *world) mustCompany(id int64) domain.Company {
	w.t.Helper()
	c, err := w.store.GetCompany(w.ctx, id)
	require.NoError(w.t, err)
	return c
}
