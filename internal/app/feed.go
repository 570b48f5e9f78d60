package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"reviewhub/internal/domain"
)

const (
	DefaultBrowseLimit   = 20
	DefaultCategoryLimit = 30
	MaxPageLimit         = 100

	SortByRating = "rating"
)

// pageBounds validates page and limit and clamps limit to MaxPageLimit.
func pageBounds(page, limit int) (int, error) {
	if page < 1 {
		return 0, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if limit < 1 {
		return 0, fmt.Errorf("%w: limit must be >= 1", domain.ErrValidation)
	}
	return min(limit, MaxPageLimit), nil
}

func window(total, page, limit int) (lo, hi int) {
	lo = (page - 1) * limit
	if lo > total {
		lo = total
	}
	hi = lo + limit
	if hi > total {
		hi = total
	}
	return lo, hi
}

// BrowseMixed reshuffles every resolvable review on each call and returns one
// page of it. TotalReviews counts all reviews, resolvable or not.
func (s *DiscoveryService) BrowseMixed(ctx context.Context, page, limit int) (domain.FeedPage, error) {
	limit, err := pageBounds(page, limit)
	if err != nil {
		return domain.FeedPage{}, err
	}
	total, err := s.store.CountReviews(ctx)
	if err != nil {
		return domain.FeedPage{}, err
	}
	ids, err := s.store.ListResolvedReviewIDs(ctx)
	if err != nil {
		return domain.FeedPage{}, err
	}
	shuffleIDs(s.rnd, ids)
	lo, hi := window(len(ids), page, limit)
	pageIDs := ids[lo:hi]

	cards := []domain.FeedCard{}
	if len(pageIDs) > 0 {
		details, err := s.store.ListReviewDetails(ctx, domain.DetailQuery{IDs: pageIDs, RequireCategory: true})
		if err != nil {
			return domain.FeedPage{}, err
		}
		cards = toFeedCards(inOrder(pageIDs, details))
	}
	return domain.FeedPage{
		Reviews: cards,
		Pagination: domain.FeedPagination{
			Pagination:   domain.NewPagination(page, limit, total),
			TotalReviews: total,
		},
	}, nil
}

// CompaniesInCategory lists every company of the category once, with its
// statistics (zero when unreviewed), filtered by a case-insensitive name
// substring, sorted, then sliced to the requested page.
func (s *DiscoveryService) CompaniesInCategory(ctx context.Context, slug string, page, limit int, search, sortBy string) (domain.CategoryPage, error) {
	limit, err := pageBounds(page, limit)
	if err != nil {
		return domain.CategoryPage{}, err
	}
	cat, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return domain.CategoryPage{}, notFound("category", err)
	}
	companies, err := s.store.ListCompanies(ctx, domain.CompanyFilter{CategoryID: cat.ID})
	if err != nil {
		return domain.CategoryPage{}, err
	}
	rows, err := s.store.ListRatings(ctx, domain.RatingFilter{CategoryID: cat.ID})
	if err != nil {
		return domain.CategoryPage{}, err
	}
	aggs := map[int64]companyAgg{}
	for _, a := range aggregateByCompany(rows) {
		aggs[a.companyID] = a
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	listing := make([]domain.CompanyListing, 0, len(companies))
	for _, c := range companies {
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		a := aggs[c.ID]
		listing = append(listing, domain.CompanyListing{
			Company:     c,
			AvgRating:   roundTenth(a.mean()),
			ReviewCount: a.count,
		})
	}

	byName := func(a, b domain.CompanyListing) int {
		if n := cmp.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	}
	if sortBy == SortByRating {
		slices.SortFunc(listing, func(a, b domain.CompanyListing) int {
			ea, eb := aggs[a.ID], aggs[b.ID]
			if n := cmp.Compare(eb.mean(), ea.mean()); n != 0 {
				return n
			}
			if n := cmp.Compare(eb.count, ea.count); n != 0 {
				return n
			}
			return byName(a, b)
		})
	} else {
		slices.SortFunc(listing, byName)
	}

	total := len(listing)
	lo, hi := window(total, page, limit)
	return domain.CategoryPage{
		Companies: listing[lo:hi],
		Pagination: domain.ListingPagination{
			Pagination:     domain.NewPagination(page, limit, total),
			TotalCompanies: total,
		},
		Category: domain.Ref{ID: cat.ID, Name: cat.Name, Slug: cat.Slug},
	}, nil
}

// LatestBestReviews returns the newest resolvable reviews rated three stars or more.
func (s *DiscoveryService) LatestBestReviews(ctx context.Context, limit int) (domain.LatestReviews, error) {
	if limit <= 0 {
		limit = LatestBestLimit
	}
	details, err := s.store.ListReviewDetails(ctx, domain.DetailQuery{
		MinRating:       latestBestMinRating,
		RequireCategory: true,
		Limit:           limit,
	})
	if err != nil {
		return domain.LatestReviews{}, err
	}
	cards := toFeedCards(details)
	return domain.LatestReviews{Reviews: cards, Total: len(cards)}, nil
}
