package app

import (
	"context"
	"errors"
	"strings"

	"reviewhub/internal/domain"
)

const (
	rankedDateLayout = "January 2, 2006"
	feedDateLayout   = "January 02, 2006"
)

func companyURL(slug string) string { return "/company/" + slug }

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// companyView resolves the category and subcategory refs of c. A missing
// parent leaves its ref nil.
func companyView(ctx context.Context, store domain.CatalogRepository, c domain.Company) (domain.CompanyView, error) {
	v := domain.CompanyView{Company: c}
	if c.CategoryID != 0 {
		cat, err := store.GetCategory(ctx, c.CategoryID)
		switch {
		case err == nil:
			v.Category = &domain.Ref{ID: cat.ID, Name: cat.Name, Slug: cat.Slug}
		case !errors.Is(err, domain.ErrNotFound):
			return v, err
		}
	}
	if c.SubcategoryID != 0 {
		sub, err := store.GetSubcategory(ctx, c.SubcategoryID)
		switch {
		case err == nil:
			v.Subcategory = &domain.Ref{ID: sub.ID, Name: sub.Name, Slug: sub.Slug}
		case !errors.Is(err, domain.ErrNotFound):
			return v, err
		}
	}
	return v, nil
}

func toRankedEntry(d domain.ReviewDetail, category string, a companyAgg, rank int) domain.RankedEntry {
	return domain.RankedEntry{
		ReviewID:     d.ID,
		Title:        orDefault(d.Title, domain.DefaultReviewTitle),
		Comment:      d.Comment,
		Rating:       d.Rating,
		User:         orDefault(d.UserName, "Anonymous"),
		Image:        orDefault(d.UserImage, domain.UserImagePlaceholder),
		Date:         d.CreatedAt.UTC().Format(rankedDateLayout),
		Company:      d.CompanyName,
		CompanyID:    d.CompanyID,
		CompanySlug:  d.CompanySlug,
		URL:          companyURL(d.CompanySlug),
		CompanyImage: orDefault(d.CompanyLogo, domain.CompanyLogoPlaceholder),
		Category:     category,
		AvgRating:    roundTenth(a.mean()),
		ReviewCount:  a.count,
		Ranking:      rank,
		CreatedAt:    d.CreatedAt,
	}
}

func toFeedCard(d domain.ReviewDetail) domain.FeedCard {
	return domain.FeedCard{
		ID:           d.ID,
		Title:        orDefault(d.Title, domain.DefaultReviewTitle),
		Comment:      d.Comment,
		Rating:       d.Rating,
		CreatedAt:    d.CreatedAt,
		User:         d.UserName,
		UserImage:    orDefault(d.UserImage, domain.UserImagePlaceholder),
		Company:      d.CompanyName,
		CompanySlug:  d.CompanySlug,
		CompanyImage: orDefault(d.CompanyLogo, domain.CompanyLogoPlaceholder),
		Category:     d.CategoryName,
		URL:          companyURL(d.CompanySlug),
		Date:         d.CreatedAt.UTC().Format(feedDateLayout),
	}
}

func toFeedCards(ds []domain.ReviewDetail) []domain.FeedCard {
	out := make([]domain.FeedCard, 0, len(ds))
	for _, d := range ds {
		out = append(out, toFeedCard(d))
	}
	return out
}

// inOrder returns the details whose ids appear in ids, in that order.
// Ids without a detail are skipped.
func inOrder(ids []int64, ds []domain.ReviewDetail) []domain.ReviewDetail {
	byID := make(map[int64]domain.ReviewDetail, len(ds))
	for _, d := range ds {
		byID[d.ID] = d
	}
	out := make([]domain.ReviewDetail, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out
}
