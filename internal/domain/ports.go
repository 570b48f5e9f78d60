package domain

import (
	"context"
	"io"
)

type ReviewRepository interface {
	// Write paths
	CreateReview(ctx context.Context, r Review) (Review, error)
	UpdateReview(ctx context.Context, r Review) (Review, error)
	DeleteReview(ctx context.Context, id int64) error

	// Read paths
	GetReview(ctx context.Context, id int64) (Review, error)
	FindReview(ctx context.Context, companyID, userID int64) (Review, error)
	CountReviews(ctx context.Context) (int, error)
	ListRatings(ctx context.Context, f RatingFilter) ([]RatingRow, error)
	ListReviewDetails(ctx context.Context, q DetailQuery) ([]ReviewDetail, error)
	// ListResolvedReviewIDs returns ids of reviews whose author, company and
	// category all exist.
	ListResolvedReviewIDs(ctx context.Context) ([]int64, error)
}

type CatalogRepository interface {
	CreateCategory(ctx context.Context, c Category) (Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (Category, error)
	FindCategoryByName(ctx context.Context, name string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateSubcategory(ctx context.Context, s Subcategory) (Subcategory, error)
	GetSubcategory(ctx context.Context, id int64) (Subcategory, error)
	GetSubcategoryBySlug(ctx context.Context, slug string) (Subcategory, error)
	FindSubcategoryByName(ctx context.Context, categoryID int64, name string) (Subcategory, error)
	// ListSubcategories lists all subcategories, or those of categoryID when it is non-zero.
	ListSubcategories(ctx context.Context, categoryID int64) ([]Subcategory, error)
	UpdateSubcategory(ctx context.Context, s Subcategory) (Subcategory, error)
	DeleteSubcategory(ctx context.Context, id int64) error

	CreateCompany(ctx context.Context, c Company) (Company, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	GetCompanyBySlug(ctx context.Context, slug string) (Company, error)
	ListCompanies(ctx context.Context, f CompanyFilter) ([]Company, error)
	UpdateCompany(ctx context.Context, c Company) (Company, error)
	DeleteCompany(ctx context.Context, id int64) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
}

// Store is the entity store: the single source of shared mutable state.
type Store interface {
	ReviewRepository
	CatalogRepository
	UserRepository
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// BlobStore persists uploaded images.
type BlobStore interface {
	Upload(ctx context.Context, folder, publicID string, r io.Reader) (UploadedBlob, error)
	Destroy(ctx context.Context, publicID string) error
}

type UploadedBlob struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// TokenIssuer signs and verifies bearer tokens carrying a user id.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
	Verify(token string) (int64, error)
}
