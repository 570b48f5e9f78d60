package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/app"
	"reviewhub/internal/domain"
)

func TestComputeStats(t *testing.T) {
	cases := []struct {
		name    string
		ratings []int
		count   int
		avg     float64
		dist    map[int]int
	}{
		{"acme", []int{5, 5, 5, 4, 3}, 5, 4.4, map[int]int{5: 3, 4: 1, 3: 1, 2: 0, 1: 0}},
		{"empty", nil, 0, 0, map[int]int{5: 0, 4: 0, 3: 0, 2: 0, 1: 0}},
		{"rounds half up", []int{4, 4, 4, 5}, 4, 4.3, map[int]int{5: 1, 4: 3, 3: 0, 2: 0, 1: 0}},
		{"rounds down", []int{4, 4, 5}, 3, 4.3, map[int]int{5: 1, 4: 2, 3: 0, 2: 0, 1: 0}},
		{"rounds up", []int{4, 5, 5}, 3, 4.7, map[int]int{5: 2, 4: 1, 3: 0, 2: 0, 1: 0}},
		{"single", []int{1}, 1, 1, map[int]int{5: 0, 4: 0, 3: 0, 2: 0, 1: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := app.ComputeStats(tc.ratings)
			assert.Equal(t, tc.count, st.ReviewCount)
			assert.InDelta(t, tc.avg, st.AvgRating, 1e-9)
			assert.Equal(t, tc.dist, st.Distribution)

			sum := 0
			for _, n := range st.Distribution {
				sum += n
			}
			assert.Equal(t, st.ReviewCount, sum)
		})
	}
}

func TestTier(t *testing.T) {
	assert.Equal(t, 0, app.Tier(nil))
	assert.Equal(t, 4, app.Tier([]int{5, 5, 5, 4, 3}))
	assert.Equal(t, 4, app.Tier([]int{3, 4}))
	assert.Equal(t, 2, app.Tier([]int{1, 2}))
	assert.Equal(t, 3, app.Tier([]int{3, 3, 2, 4}))
	assert.Equal(t, 5, app.Tier([]int{5}))
}

// mapCache is an in-process domain.Cache that counts its calls.
type mapCache struct {
	store            map[string]domain.RatingStats
	gets, sets, dels int
}

func newMapCache() *mapCache { return &mapCache{store: map[string]domain.RatingStats{}} }

func (c *mapCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.gets++
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*dst.(*domain.RatingStats) = v
	return true, nil
}

func (c *mapCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.sets++
	c.store[key] = v.(domain.RatingStats)
	return nil
}

func (c *mapCache) Del(ctx context.Context, key string) error {
	c.dels++
	delete(c.store, key)
	return nil
}

func TestCompanyStats_UnknownCompanyIsZero(t *testing.T) {
	w := newWorld(t)
	st, err := app.NewStatsService(w.store, nil, 0).CompanyStats(w.ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, st.ReviewCount)
	assert.Zero(t, st.AvgRating)
	assert.Len(t, st.Distribution, 5)
}

func TestCompanyStats_ReadThroughAndInvalidation(t *testing.T) {
	w := newWorld(t)
	acme := w.company("Acme", w.category("Electronics"))
	w.reviews(acme, 5, 5, 5, 4, 3)

	cache := newMapCache()
	stats := app.NewStatsService(w.store, cache, time.Minute)
	reviews := app.NewReviewService(w.store, cache)

	st, err := stats.CompanyStats(w.ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, st.ReviewCount)
	assert.Equal(t, 1, cache.sets)

	// a write behind the service's back is invisible until eviction
	w.review(acme, 1, 0)
	st, err = stats.CompanyStats(w.ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, st.ReviewCount)
	assert.Equal(t, 1, cache.sets)

	u := w.user()
	_, err = reviews.Create(w.ctx, u.ID, app.ReviewInput{
		CompanyID: acme.ID,
		Rating:    ptr(2.0),
		Comment:   ptr("not great, not terrible"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.dels)

	st, err = stats.CompanyStats(w.ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, st.ReviewCount)
	assert.Equal(t, map[int]int{5: 3, 4: 1, 3: 1, 2: 1, 1: 1}, st.Distribution)
}

func TestCompanyStats_ZeroTTLBypassesCache(t *testing.T) {
	w := newWorld(t)
	acme := w.company("Acme", w.category("Electronics"))
	w.reviews(acme, 4)

	cache := newMapCache()
	_, err := app.NewStatsService(w.store, cache, 0).CompanyStats(w.ctx, acme.ID)
	require.NoError(t, err)
	assert.Zero(t, cache.gets)
	assert.Zero(t, cache.sets)
}

func TestCompanyWithRatings(t *testing.T) {
	w := newWorld(t)
	cat := w.category("Electronics")
	acme := w.company("Acme", cat)
	w.reviews(acme, 5, 5, 5, 4, 3)
	stats := app.NewStatsService(w.store, nil, 0)

	cr, err := stats.CompanyWithRatings(w.ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, cr.Company.ID)
	require.NotNil(t, cr.Company.Category)
	assert.Equal(t, "electronics", cr.Company.Category.Slug)
	assert.Nil(t, cr.Company.Subcategory)
	assert.InDelta(t, 4.4, cr.AvgRating, 1e-9)

	_, err = stats.CompanyWithRatings(w.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
