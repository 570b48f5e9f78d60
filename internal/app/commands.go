package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"reviewhub/internal/domain"
)

const (
	commentMin = 10
	commentMax = 1000
	titleMax   = 100
	recentMax  = 50
)

// ReviewInput carries create/update fields. Nil means "not provided".
// Rating is a float so non-integer JSON numbers can be rejected.
type ReviewInput struct {
	CompanyID int64
	Rating    *float64
	Comment   *string
	Title     *string
}

type ReviewService struct {
	store domain.Store
	cache domain.Cache
}

func NewReviewService(s domain.Store, cache domain.Cache) *ReviewService {
	return &ReviewService{store: s, cache: cache}
}

func validRating(f float64) (int, error) {
	if f != math.Trunc(f) || f < 1 || f > 5 {
		return 0, fmt.Errorf("%w: rating must be an integer between 1 and 5", domain.ErrValidation)
	}
	return int(f), nil
}

func validComment(s string) (string, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return "", fmt.Errorf("%w: comment is required", domain.ErrValidation)
	}
	if n < commentMin || n > commentMax {
		return "", fmt.Errorf("%w: comment must be between %d and %d characters", domain.ErrValidation, commentMin, commentMax)
	}
	return s, nil
}

func validTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > titleMax {
		return "", fmt.Errorf("%w: title cannot exceed %d characters", domain.ErrValidation, titleMax)
	}
	return s, nil
}

// Create posts the first review of userID for a company.
func (s *ReviewService) Create(ctx context.Context, userID int64, in ReviewInput) (domain.Review, error) {
	if in.CompanyID == 0 {
		return domain.Review{}, fmt.Errorf("%w: companyId is required", domain.ErrValidation)
	}
	if in.Rating == nil {
		return domain.Review{}, fmt.Errorf("%w: rating is required", domain.ErrValidation)
	}
	rating, err := validRating(*in.Rating)
	if err != nil {
		return domain.Review{}, err
	}
	var comment string
	if in.Comment != nil {
		comment = *in.Comment
	}
	if comment, err = validComment(comment); err != nil {
		return domain.Review{}, err
	}
	title := domain.DefaultReviewTitle
	if in.Title != nil {
		t, err := validTitle(*in.Title)
		if err != nil {
			return domain.Review{}, err
		}
		if t != "" {
			title = t
		}
	}

	if _, err := s.store.GetCompany(ctx, in.CompanyID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Review{}, fmt.Errorf("%w: company not found", domain.ErrNotFound)
		}
		return domain.Review{}, err
	}
	switch _, err := s.store.FindReview(ctx, in.CompanyID, userID); {
	case err == nil:
		return domain.Review{}, fmt.Errorf("%w: you have already reviewed this company", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Review{}, err
	}

	r, err := s.store.CreateReview(ctx, domain.Review{
		CompanyID: in.CompanyID,
		UserID:    userID,
		Rating:    rating,
		Title:     title,
		Comment:   comment,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Review{}, fmt.Errorf("%w: you have already reviewed this company", domain.ErrConflict)
		}
		return domain.Review{}, err
	}
	if s.cache != nil {
		s.invalidateStats(ctx, r.CompanyID)
	}
	return r, nil
}

// Update overwrites only the provided, non-blank fields of the author's review.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID int64, in ReviewInput) (domain.Review, error) {
	r, err := s.owned(ctx, userID, reviewID, "update")
	if err != nil {
		return domain.Review{}, err
	}
	if in.Rating != nil {
		if r.Rating, err = validRating(*in.Rating); err != nil {
			return domain.Review{}, err
		}
	}
	if in.Comment != nil && strings.TrimSpace(*in.Comment) != "" {
		if r.Comment, err = validComment(*in.Comment); err != nil {
			return domain.Review{}, err
		}
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		if r.Title, err = validTitle(*in.Title); err != nil {
			return domain.Review{}, err
		}
	}
	out, err := s.store.UpdateReview(ctx, r)
	if err != nil {
		return domain.Review{}, err
	}
	if s.cache != nil {
		s.invalidateStats(ctx, r.CompanyID)
	}
	return out, nil
}

func (s *ReviewService) Delete(ctx context.Context, userID, reviewID int64) error {
	r, err := s.owned(ctx, userID, reviewID, "delete")
	if err != nil {
		return err
	}
	if err := s.store.DeleteReview(ctx, r.ID); err != nil {
		return err
	}
	if s.cache != nil {
		s.invalidateStats(ctx, r.CompanyID)
	}
	return nil
}

func (s *ReviewService) owned(ctx context.Context, userID, reviewID int64, verb string) (domain.Review, error) {
	r, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Review{}, fmt.Errorf("%w: review not found", domain.ErrNotFound)
		}
		return domain.Review{}, err
	}
	if r.UserID != userID {
		return domain.Review{}, fmt.Errorf("%w: not authorized to %s this review", domain.ErrForbidden, verb)
	}
	return r, nil
}

// Get returns one review with author and company attached.
func (s *ReviewService) Get(ctx context.Context, id int64) (domain.ReviewDetail, error) {
	ds, err := s.store.ListReviewDetails(ctx, domain.DetailQuery{IDs: []int64{id}})
	if err != nil {
		return domain.ReviewDetail{}, err
	}
	if len(ds) == 0 {
		return domain.ReviewDetail{}, fmt.Errorf("%w: review not found", domain.ErrNotFound)
	}
	return ds[0], nil
}

func (s *ReviewService) Recent(ctx context.Context) ([]domain.ReviewDetail, error) {
	return s.store.ListReviewDetails(ctx, domain.DetailQuery{Limit: recentMax})
}

func (s *ReviewService) ByCompany(ctx context.Context, companyID int64) ([]domain.ReviewDetail, error) {
	return s.store.ListReviewDetails(ctx, domain.DetailQuery{CompanyID: companyID})
}

func (s *ReviewService) ByUser(ctx context.Context, userID int64) ([]domain.ReviewDetail, error) {
	return s.store.ListReviewDetails(ctx, domain.DetailQuery{UserID: userID})
}

func (s *ReviewService) invalidateStats(ctx context.Context, companyID int64) {
	_ = s.cache.Del(ctx, statsKey(companyID))
}
