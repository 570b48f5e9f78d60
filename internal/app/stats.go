package app

import (
	"math"
	"sort"

	"reviewhub/internal/domain"
)

// ComputeStats derives count, mean (one decimal, half-up) and the 1..5 star
// distribution from ratings. Every star key is always present.
func ComputeStats(ratings []int) domain.RatingStats {
	st := domain.RatingStats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	if len(ratings) == 0 {
		return st
	}
	sum := 0
	for _, r := range ratings {
		if _, ok := st.Distribution[r]; ok {
			st.Distribution[r]++
		}
		sum += r
	}
	st.ReviewCount = len(ratings)
	st.AvgRating = roundTenth(float64(sum) / float64(len(ratings)))
	return st
}

// Tier is the mean rating rounded half-up to a whole star; 0 for no ratings.
func Tier(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return int(math.Floor(float64(sum)/float64(len(ratings)) + 0.5))
}

func roundTenth(x float64) float64 { return math.Round(x*10) / 10 }

func ratingsOf(rows []domain.RatingRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Rating
	}
	return out
}

// companyAgg accumulates one company's ratings and its best review.
type companyAgg struct {
	companyID int64
	sum       int
	count     int
	best      domain.RatingRow
}

func (a companyAgg) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return float64(a.sum) / float64(a.count)
}

// better orders reviews by rating desc, then createdAt desc, then id desc.
func better(a, b domain.RatingRow) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ReviewID > b.ReviewID
}

func aggregateByCompany(rows []domain.RatingRow) []companyAgg {
	idx := map[int64]int{}
	var out []companyAgg
	for _, r := range rows {
		i, ok := idx[r.CompanyID]
		if !ok {
			i = len(out)
			idx[r.CompanyID] = i
			out = append(out, companyAgg{companyID: r.CompanyID, best: r})
		} else if better(r, out[i].best) {
			out[i].best = r
		}
		out[i].sum += r.Rating
		out[i].count++
	}
	return out
}

// rankAggs sorts by exact mean desc, count desc, company id asc.
func rankAggs(aggs []companyAgg) {
	sort.Slice(aggs, func(i, j int) bool {
		a, b := aggs[i], aggs[j]
		// a.sum/a.count vs b.sum/b.count without float error
		l, r := a.sum*b.count, b.sum*a.count
		if l != r {
			return l > r
		}
		if a.count != b.count {
			return a.count > b.count
		}
		return a.companyID < b.companyID
	})
}

func newestFirst(rows []domain.RatingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ReviewID > rows[j].ReviewID
	})
}
