// Package memory is a mutex-guarded, map-backed domain.Store. It mirrors the
// MySQL store's unique indexes and join semantics and backs tests and the
// memory store driver.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"reviewhub/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	now    func() time.Time
	nextID int64

	users         map[int64]domain.User
	categories    map[int64]domain.Category
	subcategories map[int64]domain.Subcategory
	companies     map[int64]domain.Company
	reviews       map[int64]domain.Review
}

func New() *Store {
	return &Store{
		now:           func() time.Time { return time.Now().UTC() },
		users:         map[int64]domain.User{},
		categories:    map[int64]domain.Category{},
		subcategories: map[int64]domain.Subcategory{},
		companies:     map[int64]domain.Company{},
		reviews:       map[int64]domain.Review{},
	}
}

// WithClock replaces the timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// ---- reviews ----

func (s *Store) CreateReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.reviews {
		if o.CompanyID == r.CompanyID && o.UserID == r.UserID {
			return domain.Review{}, domain.ErrConflict
		}
	}
	r.ID = s.id()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	r.UpdatedAt = r.CreatedAt
	s.reviews[r.ID] = r
	return r, nil
}

func (s *Store) UpdateReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.reviews[r.ID]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	r.CompanyID, r.UserID, r.CreatedAt = old.CompanyID, old.UserID, old.CreatedAt
	r.UpdatedAt = s.now()
	s.reviews[r.ID] = r
	return r, nil
}

func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *Store) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *Store) FindReview(ctx context.Context, companyID, userID int64) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.CompanyID == companyID && r.UserID == userID {
			return r, nil
		}
	}
	return domain.Review{}, domain.ErrNotFound
}

func (s *Store) CountReviews(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews), nil
}

func (s *Store) ListRatings(ctx context.Context, f domain.RatingFilter) ([]domain.RatingRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.RatingRow
	for _, r := range s.sortedReviews() {
		c, ok := s.companies[r.CompanyID]
		if !ok {
			continue
		}
		if f.CompanyID != 0 && c.ID != f.CompanyID {
			continue
		}
		if f.CategoryID != 0 && c.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, domain.RatingRow{
			ReviewID:   r.ID,
			CompanyID:  c.ID,
			CategoryID: c.CategoryID,
			Rating:     r.Rating,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) ListReviewDetails(ctx context.Context, q domain.DetailQuery) ([]domain.ReviewDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.ReviewDetail{}
	for _, r := range s.sortedReviews() {
		if len(q.IDs) > 0 && !slices.Contains(q.IDs, r.ID) {
			continue
		}
		if (q.CompanyID != 0 && r.CompanyID != q.CompanyID) ||
			(q.UserID != 0 && r.UserID != q.UserID) ||
			r.Rating < q.MinRating {
			continue
		}
		d, ok := s.detail(r)
		if !ok || (q.RequireCategory && d.CategoryName == "") {
			continue
		}
		out = append(out, d)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) ListResolvedReviewIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for _, r := range s.reviews {
		if d, ok := s.detail(r); ok && d.CategoryName != "" {
			ids = append(ids, r.ID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// sortedReviews is newest first. Caller holds the lock.
func (s *Store) sortedReviews() []domain.Review {
	out := make([]domain.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// detail joins r with its author and company (required) and category (optional).
func (s *Store) detail(r domain.Review) (domain.ReviewDetail, bool) {
	u, ok := s.users[r.UserID]
	if !ok {
		return domain.ReviewDetail{}, false
	}
	c, ok := s.companies[r.CompanyID]
	if !ok {
		return domain.ReviewDetail{}, false
	}
	d := domain.ReviewDetail{
		Review:      r,
		UserName:    u.Name,
		UserImage:   u.ProfileImage,
		CompanyName: c.Name,
		CompanySlug: c.Slug,
		CompanyLogo: c.Logo,
	}
	if cat, ok := s.categories[c.CategoryID]; ok {
		d.CategoryID, d.CategoryName, d.CategorySlug = cat.ID, cat.Name, cat.Slug
	}
	return d, true
}

// ---- categories ----

func (s *Store) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.categories {
		if o.Name == c.Name {
			return domain.Category{}, domain.ErrConflict
		}
		if o.Slug == c.Slug {
			return domain.Category{}, domain.ErrSlugTaken
		}
	}
	c.ID = s.id()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	c.Subcategories = nil
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	return s.findCategory(func(c domain.Category) bool { return c.Slug == slug })
}

func (s *Store) FindCategoryByName(ctx context.Context, name string) (domain.Category, error) {
	return s.findCategory(func(c domain.Category) bool { return c.Name == name })
}

func (s *Store) findCategory(match func(domain.Category) bool) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if match(c) {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// ---- subcategories ----

func (s *Store) CreateSubcategory(ctx context.Context, sc domain.Subcategory) (domain.Subcategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.subcategories {
		if o.Slug == sc.Slug {
			return domain.Subcategory{}, domain.ErrSlugTaken
		}
	}
	sc.ID = s.id()
	sc.CreatedAt = s.now()
	sc.UpdatedAt = sc.CreatedAt
	s.subcategories[sc.ID] = sc
	return sc, nil
}

func (s *Store) GetSubcategory(ctx context.Context, id int64) (domain.Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.subcategories[id]
	if !ok {
		return domain.Subcategory{}, domain.ErrNotFound
	}
	return sc, nil
}

func (s *Store) GetSubcategoryBySlug(ctx context.Context, slug string) (domain.Subcategory, error) {
	return s.findSubcategory(func(sc domain.Subcategory) bool { return sc.Slug == slug })
}

func (s *Store) FindSubcategoryByName(ctx context.Context, categoryID int64, name string) (domain.Subcategory, error) {
	return s.findSubcategory(func(sc domain.Subcategory) bool { return sc.CategoryID == categoryID && sc.Name == name })
}

func (s *Store) findSubcategory(match func(domain.Subcategory) bool) (domain.Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var hits []domain.Subcategory
	for _, sc := range s.subcategories {
		if match(sc) {
			hits = append(hits, sc)
		}
	}
	if len(hits) == 0 {
		return domain.Subcategory{}, domain.ErrNotFound
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].ID < hits[j].ID })
	return hits[0], nil
}

func (s *Store) ListSubcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Subcategory{}
	for _, sc := range s.subcategories {
		if categoryID == 0 || sc.CategoryID == categoryID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateSubcategory(ctx context.Context, sc domain.Subcategory) (domain.Subcategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.subcategories[sc.ID]
	if !ok {
		return domain.Subcategory{}, domain.ErrNotFound
	}
	for _, o := range s.subcategories {
		if o.ID != sc.ID && o.Slug == sc.Slug {
			return domain.Subcategory{}, domain.ErrSlugTaken
		}
	}
	sc.CreatedAt = old.CreatedAt
	sc.UpdatedAt = s.now()
	s.subcategories[sc.ID] = sc
	return sc, nil
}

func (s *Store) DeleteSubcategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subcategories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.subcategories, id)
	return nil
}

// ---- companies ----

func (s *Store) companySlugBusy(id int64, slug string) bool {
	if slug == "" {
		return false
	}
	for _, o := range s.companies {
		if o.ID != id && o.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Store) CreateCompany(ctx context.Context, c domain.Company) (domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.companySlugBusy(0, c.Slug) {
		return domain.Company{}, domain.ErrSlugTaken
	}
	c.ID = s.id()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.companies[c.ID] = c
	return c, nil
}

func (s *Store) GetCompany(ctx context.Context, id int64) (domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return domain.Company{}, domain.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetCompanyBySlug(ctx context.Context, slug string) (domain.Company, error) {
	cs, _ := s.ListCompanies(ctx, domain.CompanyFilter{Slug: slug})
	if len(cs) == 0 || slug == "" {
		return domain.Company{}, domain.ErrNotFound
	}
	return cs[0], nil
}

func (s *Store) ListCompanies(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Company{}
	for _, c := range s.companies {
		switch {
		case f.CategoryID != 0 && c.CategoryID != f.CategoryID,
			f.SubcategoryID != 0 && c.SubcategoryID != f.SubcategoryID,
			f.SubcategoryIDs != nil && !slices.Contains(f.SubcategoryIDs, c.SubcategoryID),
			f.Slug != "" && c.Slug != f.Slug,
			f.MissingSlug && strings.TrimSpace(c.Slug) != "":
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateCompany(ctx context.Context, c domain.Company) (domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.companies[c.ID]
	if !ok {
		return domain.Company{}, domain.ErrNotFound
	}
	if s.companySlugBusy(c.ID, c.Slug) {
		return domain.Company{}, domain.ErrSlugTaken
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = s.now()
	s.companies[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCompany(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.companies, id)
	return nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.users {
		if o.Email == u.Email {
			return domain.User{}, domain.ErrConflict
		}
	}
	u.ID = s.id()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *Store) UpdateUser(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[u.ID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	for _, o := range s.users {
		if o.ID != u.ID && o.Email == u.Email {
			return domain.User{}, domain.ErrConflict
		}
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = s.now()
	s.users[u.ID] = u
	return u, nil
}

// DeleteUser removes a user; their reviews remain and are skipped by joins.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

var _ domain.Store = (*Store)(nil)
