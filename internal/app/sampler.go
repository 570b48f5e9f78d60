package app

import (
	"context"

	"reviewhub/internal/domain"
)

const displayLimit = 10

// stratum caps how many reviews of one star value are taken.
type stratum struct {
	stars int
	max   int
}

func quotasFor(tier int) []stratum {
	switch {
	case tier >= 4:
		return []stratum{{5, 6}, {4, 3}, {3, 1}}
	case tier == 3:
		return []stratum{{5, 2}, {4, 3}, {3, 3}, {2, 2}}
	default:
		return []stratum{{5, 1}, {4, 2}, {3, 3}, {2, 2}, {1, 2}}
	}
}

// CuratedSample applies the tier quotas to rows (newest first), shuffles the
// selection with rnd and truncates it to ten review ids.
func CuratedSample(rows []domain.RatingRow, rnd Rand) []int64 {
	if len(rows) == 0 {
		return nil
	}
	byStars := map[int][]int64{}
	for _, r := range rows {
		byStars[r.Rating] = append(byStars[r.Rating], r.ReviewID)
	}

	var picked []int64
	for _, q := range quotasFor(Tier(ratingsOf(rows))) {
		ids := byStars[q.stars]
		if len(ids) > q.max {
			ids = ids[:q.max]
		}
		picked = append(picked, ids...)
	}
	shuffleIDs(rnd, picked)
	if len(picked) > displayLimit {
		picked = picked[:displayLimit]
	}
	return picked
}

// SelectDisplayReviews returns at most ten reviews of a company for its page,
// in shuffled order, with author and company attached.
func (s *DiscoveryService) SelectDisplayReviews(ctx context.Context, companyID int64) ([]domain.ReviewDetail, error) {
	rows, err := s.store.ListRatings(ctx, domain.RatingFilter{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	newestFirst(rows)
	ids := CuratedSample(rows, s.rnd)
	if len(ids) == 0 {
		return []domain.ReviewDetail{}, nil
	}
	details, err := s.store.ListReviewDetails(ctx, domain.DetailQuery{IDs: ids})
	if err != nil {
		return nil, err
	}
	return inOrder(ids, details), nil
}
