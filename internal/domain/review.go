package domain

import "time"

const DefaultReviewTitle = "Review"

type Review struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"companyId"`
	UserID       int64     `json:"userId"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	IsVerified   bool      `json:"isVerified"`
	HelpfulVotes int       `json:"helpfulVotes"`
	ReportCount  int       `json:"reportCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ReviewDetail is a review joined with its author, company and the company's
// category. Category fields are empty when the category no longer exists.
type ReviewDetail struct {
	Review
	UserName     string `json:"userName"`
	UserImage    string `json:"userImage"`
	CompanyName  string `json:"companyName"`
	CompanySlug  string `json:"companySlug"`
	CompanyLogo  string `json:"companyLogo"`
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	CategorySlug string `json:"categorySlug"`
}

// RatingRow is the minimal projection aggregation works on. Rows only exist
// for reviews whose company still exists.
type RatingRow struct {
	ReviewID   int64
	CompanyID  int64
	CategoryID int64
	Rating     int
	CreatedAt  time.Time
}

// RatingFilter narrows ListRatings. Zero fields are ignored.
type RatingFilter struct {
	CompanyID  int64
	CategoryID int64
}

// DetailQuery narrows ListReviewDetails. Results are newest first.
type DetailQuery struct {
	IDs       []int64
	CompanyID int64
	UserID    int64
	MinRating int
	// RequireCategory drops reviews whose company has no resolvable category.
	RequireCategory bool
	Limit           int
}
