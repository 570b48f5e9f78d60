package domain

import "time"

// RatingStats is derived on every read and never stored.
type RatingStats struct {
	AvgRating    float64     `json:"avgRating"`
	ReviewCount  int         `json:"reviewCount"`
	Distribution map[int]int `json:"ratingBreakdown"`
}

// CompanyRatings is a company with its derived statistics.
type CompanyRatings struct {
	Company CompanyView `json:"company"`
	RatingStats
}

// RankedEntry is one homepage card: a company, its statistics and its best review.
type RankedEntry struct {
	ReviewID     int64     `json:"_id"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	Rating       int       `json:"rating"`
	User         string    `json:"user"`
	Image        string    `json:"image"`
	Date         string    `json:"date"`
	Company      string    `json:"company"`
	CompanyID    int64     `json:"companyId"`
	CompanySlug  string    `json:"companySlug"`
	URL          string    `json:"url"`
	CompanyImage string    `json:"companyimage"`
	Category     string    `json:"category"`
	AvgRating    float64   `json:"avgRating"`
	ReviewCount  int       `json:"reviewCount"`
	Ranking      int       `json:"ranking"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RankedCategoryInfo struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	TotalCompanies int    `json:"totalCompanies"`
}

type RankedCategory struct {
	Category  RankedCategoryInfo `json:"category"`
	Companies []RankedEntry      `json:"companies"`
}

// FeedCard is a review as shown in browse and latest feeds.
type FeedCard struct {
	ID           int64     `json:"_id"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"createdAt"`
	User         string    `json:"user"`
	UserImage    string    `json:"userImage"`
	Company      string    `json:"company"`
	CompanySlug  string    `json:"companySlug"`
	CompanyImage string    `json:"companyImage"`
	Category     string    `json:"category"`
	URL          string    `json:"url"`
	Date         string    `json:"date"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	Limit       int  `json:"limit"`
}

// NewPagination derives the page block for total items split into pages of limit.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
		Limit:       limit,
	}
}

type FeedPagination struct {
	Pagination
	TotalReviews int `json:"totalReviews"`
}

type FeedPage struct {
	Reviews    []FeedCard     `json:"reviews"`
	Pagination FeedPagination `json:"pagination"`
}

// LatestReviews is the latest-best feed.
type LatestReviews struct {
	Reviews []FeedCard `json:"reviews"`
	Total   int        `json:"total"`
}

// CompanyListing is a company row of a category listing.
type CompanyListing struct {
	Company
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
}

type ListingPagination struct {
	Pagination
	TotalCompanies int `json:"totalCompanies"`
}

type CategoryPage struct {
	Companies  []CompanyListing  `json:"companies"`
	Pagination ListingPagination `json:"pagination"`
	Category   Ref               `json:"category"`
}
