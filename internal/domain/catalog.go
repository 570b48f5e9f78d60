package domain

import "time"

const (
	// GeneralName names the fallback category and subcategory used when a
	// company is created without a placement.
	GeneralName = "General"

	CompanyLogoPlaceholder = "https://via.placeholder.com/150?text=Company+Logo"
)

type Category struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Description   string        `json:"description,omitempty"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type Subcategory struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"categoryId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Company struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	URL           string    `json:"url,omitempty"`
	Description   string    `json:"description,omitempty"`
	Logo          string    `json:"logo,omitempty"`
	CategoryID    int64     `json:"categoryId"`
	SubcategoryID int64     `json:"subcategoryId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Ref is the short {name, slug} projection of a category or subcategory.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CompanyView is a company with its placement resolved.
type CompanyView struct {
	Company
	Category    *Ref `json:"category,omitempty"`
	Subcategory *Ref `json:"subcategory,omitempty"`
}

// CompanyFilter narrows ListCompanies. Zero fields are ignored.
type CompanyFilter struct {
	CategoryID    int64
	SubcategoryID int64
	// SubcategoryIDs matches companies in any of the given subcategories.
	SubcategoryIDs []int64
	Slug           string
	MissingSlug    bool
}
