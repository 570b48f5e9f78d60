package app_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/app"
	"reviewhub/internal/domain"
)

const okComment = "solid service, would return"

func TestReviewCreate(t *testing.T) {
	w := newWorld(t)
	acme := w.company("Acme", w.category("Electronics"))
	u := w.user()
	svc := app.NewReviewService(w.store, nil)

	r, err := svc.Create(w.ctx, u.ID, app.ReviewInput{CompanyID: acme.ID, Rating: ptr(4.0), Comment: ptr("  " + okComment + "  ")})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Rating)
	assert.Equal(t, okComment, r.Comment)
	assert.Equal(t, domain.DefaultReviewTitle, r.Title)
	assert.Equal(t, u.ID, r.UserID)

	_, err = svc.Create(w.ctx, u.ID, app.ReviewInput{CompanyID: acme.ID, Rating: ptr(5.0), Comment: ptr(okComment)})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReviewCreate_Validation(t *testing.T) {
	w := newWorld(t)
	acme := w.company("Acme", w.category("Electronics"))
	u := w.user()
	svc := app.NewReviewService(w.store, nil)

	cases := map[string]app.ReviewInput{
		"no company":    {Rating: ptr(4.0), Comment: ptr(okComment)},
		"no rating":     {CompanyID: acme.ID, Comment: ptr(okComment)},
		"rating zero":   {CompanyID: acme.ID, Rating: ptr(0.0), Comment: ptr(okComment)},
		"rating six":    {CompanyID: acme.ID, Rating: ptr(6.0), Comment: ptr(okComment)},
		"fractional":    {CompanyID: acme.ID, Rating: ptr(4.5), Comment: ptr(okComment)},
		"no comment":    {CompanyID: acme.ID, Rating: ptr(4.0)},
		"short comment": {CompanyID: acme.ID, Rating: ptr(4.0), Comment: ptr("too short")},
		"long comment":  {CompanyID: acme.ID, Rating: ptr(4.0), Comment: ptr(strings.Repeat("x", 1001))},
		"long title":    {CompanyID: acme.ID, Rating: ptr(4.0), Comment: ptr(okComment), Title: ptr(strings.Repeat("t", 101))},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(w.ctx, u.ID, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := svc.Create(w.ctx, u.ID, app.ReviewInput{CompanyID: 999, Rating: ptr(4.0), Comment: ptr(okComment)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewUpdate(t *testing.T) {
	w := newWorld(t)
	acme := w.company("Acme", w.category("Electronics"))
	u := w.user()
	svc := app.NewReviewService(w.store, nil)
	r, err := svc.Create(w.ctx, u.ID, app.ReviewInput{CompanyID: acme.ID, Rating: ptr(2.0), Comment: ptr(okComment), Title: ptr("Meh")})
	require.NoError(t, err)

	got, err := svc.Update(w.ctx, u.ID, r.ID, app.ReviewInput{Rating: ptr(5.0), Comment: ptr("   ")})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, okComment, got.Comment, "blank comment leaves the old one")
	assert.Equal(t, "Meh", got.Title)
	assert.Equal(t, r.CreatedAt, got.CreatedAt)

	_, err = svc.Update(w.ctx, u.ID, r.ID, app.ReviewInput{Rating: ptr(3.5)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stranger := w.user()
	_, err = svc.Update(w.ctx, stranger.ID, r.ID, app.ReviewInput{Rating: ptr(1.0)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Update(w.ctx, u.ID, 424242, app.ReviewInput{Rating: ptr(1.0)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewDelete(t *testing.T) {
	w := newWorld(t)
	acme := w.company("Acme", w.category("Electronics"))
	u := w.user()
	cache := newMapCache()
	svc := app.NewReviewService(w.store, cache)
	r, err := svc.Create(w.ctx, u.ID, app.ReviewInput{CompanyID: acme.ID, Rating: ptr(2.0), Comment: ptr(okComment)})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(w.ctx, w.user().ID, r.ID), domain.ErrForbidden)
	require.NoError(t, svc.Delete(w.ctx, u.ID, r.ID))
	assert.Equal(t, 2, cache.dels)
	assert.ErrorIs(t, svc.Delete(w.ctx, u.ID, r.ID), domain.ErrNotFound)

	// the pair is free again
	_, err = svc.Create(w.ctx, u.ID, app.ReviewInput{CompanyID: acme.ID, Rating: ptr(4.0), Comment: ptr(okComment)})
	assert.NoError(t, err)
}

func TestReviewReads(t *testing.T) {
	w := newWorld(t)
	cat := w.category("Electronics")
	acme := w.company("Acme", cat)
	other := w.company("Other", cat)
	rs := w.reviews(acme, 3, 4)
	w.reviews(other, 5)
	svc := app.NewReviewService(w.store, nil)

	d, err := svc.Get(w.ctx, rs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", d.CompanyName)
	assert.Equal(t, "Electronics", d.CategoryName)
	_, err = svc.Get(w.ctx, 424242)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byCompany, err := svc.ByCompany(w.ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, byCompany, 2)
	assert.Equal(t, rs[1].ID, byCompany[0].ID, "newest first")

	byUser, err := svc.ByUser(w.ctx, rs[0].UserID)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	recent, err := svc.Recent(w.ctx)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}
