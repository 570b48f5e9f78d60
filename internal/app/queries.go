package app

import (
	"context"
	"fmt"
	"time"

	"reviewhub/internal/domain"
)

// StatsService serves company rating statistics. With a positive TTL and a
// cache the result is read through the cache; review writes evict it.
type StatsService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewStatsService(s domain.Store, c domain.Cache, ttl time.Duration) *StatsService {
	return &StatsService{store: s, cache: c, cacheTTL: ttl}
}

func statsKey(companyID int64) string { return fmt.Sprintf("stats:company:%d", companyID) }

func (s *StatsService) cached() bool { return s.cache != nil && s.cacheTTL > 0 }

// CompanyStats never fails on an unknown or unreviewed company; both yield zero stats.
func (s *StatsService) CompanyStats(ctx context.Context, companyID int64) (domain.RatingStats, error) {
	key := statsKey(companyID)
	if s.cached() {
		var st domain.RatingStats
		if ok, _ := s.cache.Get(ctx, key, &st); ok {
			return st, nil
		}
	}
	rows, err := s.store.ListRatings(ctx, domain.RatingFilter{CompanyID: companyID})
	if err != nil {
		return domain.RatingStats{}, err
	}
	st := ComputeStats(ratingsOf(rows))
	if s.cached() {
		_ = s.cache.Set(ctx, key, st, int(s.cacheTTL.Seconds()))
	}
	return st, nil
}

func (s *StatsService) CompanyWithRatings(ctx context.Context, slug string) (domain.CompanyRatings, error) {
	c, err := s.store.GetCompanyBySlug(ctx, slug)
	if err != nil {
		return domain.CompanyRatings{}, notFound("company", err)
	}
	view, err := companyView(ctx, s.store, c)
	if err != nil {
		return domain.CompanyRatings{}, err
	}
	st, err := s.CompanyStats(ctx, c.ID)
	if err != nil {
		return domain.CompanyRatings{}, err
	}
	return domain.CompanyRatings{Company: view, RatingStats: st}, nil
}
