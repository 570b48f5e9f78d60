package app_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/app"
	"reviewhub/internal/domain"
)

func TestBrowseMixed_PagesPartitionTheFeed(t *testing.T) {
	w := newWorld(t)
	cat := w.category("Electronics")
	for i := 0; i < 5; i++ {
		w.reviews(w.company(fmt.Sprintf("Shop %d", i), cat), 1, 2, 3, 4, 5)
	}

	seen := map[int64]bool{}
	for page, want := range map[int]int{1: 10, 2: 10, 3: 5, 4: 0} {
		// a fresh source per call replays the same permutation
		fp, err := app.NewDiscoveryService(w.store, seeded()).BrowseMixed(w.ctx, page, 10)
		require.NoError(t, err)
		assert.Len(t, fp.Reviews, want, "page %d", page)
		assert.Equal(t, 25, fp.Pagination.TotalReviews)
		assert.Equal(t, 3, fp.Pagination.TotalPages)
		assert.Equal(t, page < 3, fp.Pagination.HasNextPage)
		assert.Equal(t, page > 1, fp.Pagination.HasPrevPage)
		assert.Equal(t, page, fp.Pagination.CurrentPage)
		for _, c := range fp.Reviews {
			assert.False(t, seen[c.ID], "review %d on two pages", c.ID)
			seen[c.ID] = true
			assert.Equal(t, "Electronics", c.Category)
			assert.Equal(t, "/company/"+c.CompanySlug, c.URL)
		}
	}
	assert.Len(t, seen, 25)
}

func TestBrowseMixed_SkipsOrphansButCountsThem(t *testing.T) {
	w := newWorld(t)
	cat := w.category("Food")
	gone := w.company("Gone", cat)
	w.reviews(gone, 5, 5)
	w.reviews(w.company("Kept", cat), 4)
	require.NoError(t, w.store.DeleteCompany(w.ctx, gone.ID))

	fp, err := app.NewDiscoveryService(w.store, seeded()).BrowseMixed(w.ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, fp.Reviews, 1)
	assert.Equal(t, "Kept", fp.Reviews[0].Company)
	assert.Equal(t, 3, fp.Pagination.TotalReviews)
}

func TestBrowseMixed_Validation(t *testing.T) {
	svc := app.NewDiscoveryService(newWorld(t).store, seeded())
	for _, tc := range []struct{ page, limit int }{{0, 10}, {1, 0}, {1, -3}, {-1, 5}} {
		_, err := svc.BrowseMixed(t.Context(), tc.page, tc.limit)
		assert.ErrorIs(t, err, domain.ErrValidation, "page=%d limit=%d", tc.page, tc.limit)
	}
}

func TestPaging_OversizedLimitIsClamped(t *testing.T) {
	w, cat := categoryFixture(t)
	svc := app.NewDiscoveryService(w.store, seeded())

	fp, err := svc.BrowseMixed(w.ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, app.MaxPageLimit, fp.Pagination.Limit)

	cp, err := svc.CompaniesInCategory(w.ctx, cat.Slug, 1, app.MaxPageLimit+1, "", "")
	require.NoError(t, err)
	assert.Equal(t, app.MaxPageLimit, cp.Pagination.Limit)
	assert.Len(t, cp.Companies, 4)
}

func categoryFixture(t *testing.T) (*world, domain.Category) {
	w := newWorld(t)
	cat := w.category("Electronics")
	w.reviews(w.company("Zeta", cat), 5, 5)
	w.company("Alpha", cat)
	w.reviews(w.company("Beta", cat), 3)
	w.reviews(w.company("Gamma Corp", cat), 4, 4, 4)
	w.reviews(w.company("Elsewhere", w.category("Food")), 5)
	return w, cat
}

func listingNames(cp domain.CategoryPage) []string {
	var out []string
	for _, c := range cp.Companies {
		out = append(out, c.Name)
	}
	return out
}

func TestCompaniesInCategory_EachCompanyOnce(t *testing.T) {
	w, cat := categoryFixture(t)
	svc := app.NewDiscoveryService(w.store, seeded())

	cp, err := svc.CompaniesInCategory(w.ctx, cat.Slug, 1, 30, "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma Corp", "Zeta"}, listingNames(cp))
	assert.Equal(t, 4, cp.Pagination.TotalCompanies)
	assert.Equal(t, domain.Ref{ID: cat.ID, Name: "Electronics", Slug: "electronics"}, cp.Category)

	alpha := cp.Companies[0]
	assert.Zero(t, alpha.ReviewCount)
	assert.Zero(t, alpha.AvgRating)
	gamma := cp.Companies[2]
	assert.Equal(t, 3, gamma.ReviewCount)
	assert.InDelta(t, 4.0, gamma.AvgRating, 1e-9)
}

func TestCompaniesInCategory_SortByRating(t *testing.T) {
	w, cat := categoryFixture(t)
	cp, err := app.NewDiscoveryService(w.store, seeded()).CompaniesInCategory(w.ctx, cat.Slug, 1, 30, "", app.SortByRating)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta", "Gamma Corp", "Beta", "Alpha"}, listingNames(cp))
}

func TestCompaniesInCategory_SearchIsCaseInsensitive(t *testing.T) {
	w, cat := categoryFixture(t)
	svc := app.NewDiscoveryService(w.store, seeded())

	cp, err := svc.CompaniesInCategory(w.ctx, cat.Slug, 1, 30, "  gAmMa ", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma Corp"}, listingNames(cp))
	assert.Equal(t, 1, cp.Pagination.TotalCompanies)

	cp, err = svc.CompaniesInCategory(w.ctx, cat.Slug, 1, 30, "ZZZ", "")
	require.NoError(t, err)
	assert.Empty(t, cp.Companies)
	assert.NotNil(t, cp.Companies)
}

func TestCompaniesInCategory_Pagination(t *testing.T) {
	w, cat := categoryFixture(t)
	svc := app.NewDiscoveryService(w.store, seeded())

	p1, err := svc.CompaniesInCategory(w.ctx, cat.Slug, 1, 3, "", "")
	require.NoError(t, err)
	p2, err := svc.CompaniesInCategory(w.ctx, cat.Slug, 2, 3, "", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha", "Beta", "Gamma Corp"}, listingNames(p1))
	assert.Equal(t, []string{"Zeta"}, listingNames(p2))
	assert.Equal(t, 2, p1.Pagination.TotalPages)
	assert.True(t, p1.Pagination.HasNextPage)
	assert.False(t, p2.Pagination.HasNextPage)
	assert.True(t, p2.Pagination.HasPrevPage)
}

func TestCompaniesInCategory_Errors(t *testing.T) {
	w, cat := categoryFixture(t)
	svc := app.NewDiscoveryService(w.store, seeded())

	_, err := svc.CompaniesInCategory(w.ctx, "nope", 1, 30, "", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.CompaniesInCategory(w.ctx, cat.Slug, 0, 30, "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLatestBestReviews(t *testing.T) {
	w := newWorld(t)
	cat := w.category("Electronics")
	rs := w.reviews(w.company("Acme", cat), 1, 2, 3, 4, 5)

	gone := w.company("Gone", cat)
	w.review(gone, 5, 0)
	require.NoError(t, w.store.DeleteCompany(w.ctx, gone.ID))

	homeless := w.category("Homeless")
	w.review(w.company("Drifter", homeless), 5, 0)
	require.NoError(t, w.store.DeleteCategory(w.ctx, homeless.ID))

	got, err := app.NewDiscoveryService(w.store, seeded()).LatestBestReviews(w.ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 3, got.Total)
	require.Len(t, got.Reviews, 3)
	assert.Equal(t, []int64{rs[4].ID, rs[3].ID, rs[2].ID}, []int64{got.Reviews[0].ID, got.Reviews[1].ID, got.Reviews[2].ID})

	one, err := app.NewDiscoveryService(w.store, seeded()).LatestBestReviews(w.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, one.Total)
}
