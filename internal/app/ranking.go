package app

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"reviewhub/internal/domain"
)

const (
	DefaultCategoryCount = 6
	DefaultPerCategory   = 4
	LatestBestLimit      = 25
	latestBestMinRating  = 3
)

// DiscoveryService builds the ranked, sampled and paginated review feeds.
type DiscoveryService struct {
	store domain.Store
	rnd   Rand
}

func NewDiscoveryService(s domain.Store, rnd Rand) *DiscoveryService {
	if rnd == nil {
		rnd = DefaultRand
	}
	return &DiscoveryService{store: s, rnd: rnd}
}

// BestCompaniesByCategory draws categoryCount random categories among those
// with reviewed companies and ranks the top perCategory companies of each.
// Categories left without a resolvable entry are dropped.
func (s *DiscoveryService) BestCompaniesByCategory(ctx context.Context, categoryCount, perCategory int) ([]domain.RankedCategory, error) {
	if categoryCount <= 0 {
		categoryCount = DefaultCategoryCount
	}
	if perCategory <= 0 {
		perCategory = DefaultPerCategory
	}

	rows, err := s.store.ListRatings(ctx, domain.RatingFilter{})
	if err != nil {
		return nil, err
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	catByID := make(map[int64]domain.Category, len(cats))
	for _, c := range cats {
		catByID[c.ID] = c
	}

	byCategory := map[int64][]domain.RatingRow{}
	for _, r := range rows {
		if _, ok := catByID[r.CategoryID]; ok {
			byCategory[r.CategoryID] = append(byCategory[r.CategoryID], r)
		}
	}
	eligible := make([]int64, 0, len(byCategory))
	for id := range byCategory {
		eligible = append(eligible, id)
	}
	// map order is random already; sort so the draw depends only on rnd
	sort.Slice(eligible, func(i, j int) bool { return eligible[i] < eligible[j] })
	picked := sampleIDs(s.rnd, eligible, categoryCount)
	log.Debug().Int("eligible", len(eligible)).Ints64("picked", picked).Msg("best-by-category draw")

	ranked := make([][]domain.RankedEntry, len(picked))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range picked {
		g.Go(func() error {
			entries, err := s.rankCategory(gctx, catByID[id], byCategory[id], perCategory)
			ranked[i] = entries
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.RankedCategory, 0, len(picked))
	for i, id := range picked {
		if len(ranked[i]) == 0 {
			continue
		}
		c := catByID[id]
		out = append(out, domain.RankedCategory{
			Category: domain.RankedCategoryInfo{
				Name:           c.Name,
				Slug:           c.Slug,
				TotalCompanies: len(ranked[i]),
			},
			Companies: ranked[i],
		})
	}
	return out, nil
}

func (s *DiscoveryService) rankCategory(ctx context.Context, cat domain.Category, rows []domain.RatingRow, perCategory int) ([]domain.RankedEntry, error) {
	aggs := aggregateByCompany(rows)
	rankAggs(aggs)
	if len(aggs) > perCategory {
		aggs = aggs[:perCategory]
	}
	if len(aggs) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(aggs))
	for i, a := range aggs {
		ids[i] = a.best.ReviewID
	}
	details, err := s.store.ListReviewDetails(ctx, domain.DetailQuery{IDs: ids})
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.ReviewDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	entries := make([]domain.RankedEntry, 0, len(aggs))
	for _, a := range aggs {
		d, ok := byID[a.best.ReviewID]
		if !ok {
			continue
		}
		entries = append(entries, toRankedEntry(d, cat.Name, a, len(entries)+1))
	}
	return entries, nil
}
