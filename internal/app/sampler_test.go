package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/app"
	"reviewhub/internal/domain"
)

// rowsFor builds newest-first rating rows, count reviews per star value.
func rowsFor(counts map[int]int) []domain.RatingRow {
	var rows []domain.RatingRow
	id := int64(1000)
	for stars := 5; stars >= 1; stars-- {
		for i := 0; i < counts[stars]; i++ {
			rows = append(rows, domain.RatingRow{ReviewID: id, CompanyID: 1, Rating: stars})
			id--
		}
	}
	return rows
}

func starsOf(rows []domain.RatingRow, ids []int64) map[int]int {
	byID := map[int64]int{}
	for _, r := range rows {
		byID[r.ReviewID] = r.Rating
	}
	out := map[int]int{}
	for _, id := range ids {
		out[byID[id]]++
	}
	return out
}

func TestCuratedSample_Quotas(t *testing.T) {
	cases := []struct {
		name   string
		counts map[int]int
		want   map[int]int
	}{
		{"tier 5 only fives", map[int]int{5: 20}, map[int]int{5: 6}},
		{"tier 4", map[int]int{5: 8, 4: 5, 3: 3, 1: 2}, map[int]int{5: 6, 4: 3, 3: 1}},
		{"tier 3", map[int]int{5: 10, 4: 10, 3: 10, 2: 10, 1: 10}, map[int]int{5: 2, 4: 3, 3: 3, 2: 2}},
		{"tier 2", map[int]int{5: 3, 4: 3, 3: 3, 2: 5, 1: 10}, map[int]int{5: 1, 4: 2, 3: 3, 2: 2, 1: 2}},
		{"sparse strata", map[int]int{5: 1, 3: 1}, map[int]int{5: 1, 3: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := rowsFor(tc.counts)
			ids := app.CuratedSample(rows, seeded())
			assert.LessOrEqual(t, len(ids), 10)
			assert.Equal(t, tc.want, starsOf(rows, ids))
		})
	}
}

func TestCuratedSample_TakesNewestOfEachStratum(t *testing.T) {
	rows := rowsFor(map[int]int{5: 20})
	ids := app.CuratedSample(rows, seeded())
	want := []int64{1000, 999, 998, 997, 996, 995}
	assert.ElementsMatch(t, want, ids)
}

func TestCuratedSample_DeterministicForSeed(t *testing.T) {
	rows := rowsFor(map[int]int{5: 8, 4: 5, 3: 3})
	a := app.CuratedSample(rows, seeded())
	b := app.CuratedSample(rows, seeded())
	assert.Equal(t, a, b)
}

func TestCuratedSample_Empty(t *testing.T) {
	assert.Empty(t, app.CuratedSample(nil, seeded()))
}

func TestSelectDisplayReviews(t *testing.T) {
	w := newWorld(t)
	acme := w.company("Acme", w.category("Electronics"))
	other := w.company("Other", w.category("Food"))
	w.reviews(acme, 5, 5, 5, 5, 5, 5, 5, 5, 4, 4, 4, 4, 3, 2)
	w.reviews(other, 1, 1)

	svc := app.NewDiscoveryService(w.store, seeded())
	ds, err := svc.SelectDisplayReviews(w.ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, ds, 10)
	seen := map[int64]bool{}
	for _, d := range ds {
		assert.Equal(t, acme.ID, d.CompanyID)
		assert.Equal(t, "Acme", d.CompanyName)
		assert.NotEmpty(t, d.UserName)
		assert.NotEqual(t, 2, d.Rating)
		assert.False(t, seen[d.ID], "review %d returned twice", d.ID)
		seen[d.ID] = true
	}

	none, err := svc.SelectDisplayReviews(w.ctx, 424242)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
