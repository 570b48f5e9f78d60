package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"reviewhub/internal/domain"
)

// CompanyInput carries company create/update fields. Blank strings and zero
// ids are "not provided" on update.
type CompanyInput struct {
	Name          string
	URL           string
	Logo          string
	Description   string
	CategoryID    int64
	SubcategoryID int64
}

// CatalogService manages categories, subcategories and companies.
type CatalogService struct {
	store domain.Store
	cache domain.Cache
}

// NewCatalogService builds the service. cache may be nil; when set, deleted
// companies have their cached stats evicted.
func NewCatalogService(s domain.Store, cache domain.Cache) *CatalogService {
	return &CatalogService{store: s, cache: cache}
}

func required(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	return v, nil
}

func notFound(what string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", domain.ErrNotFound, what)
	}
	return err
}

// ---- categories ----

// ListCategories returns every category with its subcategories attached.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubcategories(ctx, 0)
	if err != nil {
		return nil, err
	}
	byCat := map[int64][]domain.Subcategory{}
	for _, sc := range subs {
		byCat[sc.CategoryID] = append(byCat[sc.CategoryID], sc)
	}
	for i := range cats {
		cats[i].Subcategories = byCat[cats[i].ID]
		if cats[i].Subcategories == nil {
			cats[i].Subcategories = []domain.Subcategory{}
		}
	}
	return cats, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (domain.Category, error) {
	name, err := required("name", name)
	if err != nil {
		return domain.Category{}, err
	}
	taken := lookupTaken(s.store.GetCategoryBySlug, func(c domain.Category) int64 { return c.ID }, 0)
	return writeWithSlug(ctx, orDefault(TaxonomySlug(name), "category"), taken, func(slug string) (domain.Category, error) {
		return s.store.CreateCategory(ctx, domain.Category{Name: name, Slug: slug, Description: description})
	})
}

// DeleteCategory removes the category, its subcategories and every company
// placed in either. Steps run in dependency order and stop at the first
// failure; completed steps are not rolled back.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return notFound("category", err)
	}
	subs, err := s.store.ListSubcategories(ctx, id)
	if err != nil {
		return err
	}
	subIDs := make([]int64, len(subs))
	for i, sc := range subs {
		subIDs[i] = sc.ID
	}

	seen := map[int64]bool{}
	var companies []domain.Company
	for _, f := range []domain.CompanyFilter{{CategoryID: id}, {SubcategoryIDs: subIDs}} {
		if f.CategoryID == 0 && len(f.SubcategoryIDs) == 0 {
			continue
		}
		cs, err := s.store.ListCompanies(ctx, f)
		if err != nil {
			return err
		}
		for _, c := range cs {
			if !seen[c.ID] {
				seen[c.ID] = true
				companies = append(companies, c)
			}
		}
	}

	if err := s.deleteCompanies(ctx, companies); err != nil {
		return err
	}
	for _, sc := range subs {
		if err := ignoreNotFound(s.store.DeleteSubcategory(ctx, sc.ID)); err != nil {
			return fmt.Errorf("delete subcategory %d: %w", sc.ID, err)
		}
	}
	if err := ignoreNotFound(s.store.DeleteCategory(ctx, id)); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	log.Info().Int64("category", id).Int("subcategories", len(subs)).Int("companies", len(companies)).Msg("category deleted")
	return nil
}

func (s *CatalogService) deleteCompanies(ctx context.Context, cs []domain.Company) error {
	for _, c := range cs {
		if err := ignoreNotFound(s.store.DeleteCompany(ctx, c.ID)); err != nil {
			return fmt.Errorf("delete company %d: %w", c.ID, err)
		}
		s.evictStats(ctx, c.ID)
	}
	return nil
}

func (s *CatalogService) evictStats(ctx context.Context, companyID int64) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, statsKey(companyID))
	}
}

func ignoreNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// CompaniesInCategorySlug lists companies whose category is the one at slug.
func (s *CatalogService) CompaniesInCategorySlug(ctx context.Context, slug string) ([]domain.Company, error) {
	cat, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, notFound("category", err)
	}
	return s.store.ListCompanies(ctx, domain.CompanyFilter{CategoryID: cat.ID})
}

// CompaniesUnderCategorySlug lists companies placed in any subcategory of the
// category at slug.
func (s *CatalogService) CompaniesUnderCategorySlug(ctx context.Context, slug string) ([]domain.Company, error) {
	cat, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, notFound("category", err)
	}
	subs, err := s.store.ListSubcategories(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return []domain.Company{}, nil
	}
	ids := make([]int64, len(subs))
	for i, sc := range subs {
		ids[i] = sc.ID
	}
	return s.store.ListCompanies(ctx, domain.CompanyFilter{SubcategoryIDs: ids})
}

// ---- subcategories ----

func (s *CatalogService) CreateSubcategory(ctx context.Context, categoryID int64, name, description string) (domain.Subcategory, error) {
	name, err := required("name", name)
	if err != nil {
		return domain.Subcategory{}, err
	}
	if categoryID == 0 {
		return domain.Subcategory{}, fmt.Errorf("%w: categoryId is required", domain.ErrValidation)
	}
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return domain.Subcategory{}, notFound("category", err)
	}
	return s.createSubcategory(ctx, categoryID, name, description)
}

func (s *CatalogService) createSubcategory(ctx context.Context, categoryID int64, name, description string) (domain.Subcategory, error) {
	taken := lookupTaken(s.store.GetSubcategoryBySlug, func(sc domain.Subcategory) int64 { return sc.ID }, 0)
	return writeWithSlug(ctx, orDefault(TaxonomySlug(name), "subcategory"), taken, func(slug string) (domain.Subcategory, error) {
		return s.store.CreateSubcategory(ctx, domain.Subcategory{CategoryID: categoryID, Name: name, Slug: slug, Description: description})
	})
}

func (s *CatalogService) ListSubcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	return s.store.ListSubcategories(ctx, categoryID)
}

// MoveSubcategory re-parents a subcategory and the companies placed in it.
func (s *CatalogService) MoveSubcategory(ctx context.Context, id, categoryID int64) (domain.Subcategory, error) {
	if categoryID == 0 {
		return domain.Subcategory{}, fmt.Errorf("%w: newCategoryId is required", domain.ErrValidation)
	}
	sc, err := s.store.GetSubcategory(ctx, id)
	if err != nil {
		return domain.Subcategory{}, notFound("subcategory", err)
	}
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return domain.Subcategory{}, notFound("category", err)
	}
	sc.CategoryID = categoryID
	if sc, err = s.store.UpdateSubcategory(ctx, sc); err != nil {
		return domain.Subcategory{}, err
	}
	companies, err := s.store.ListCompanies(ctx, domain.CompanyFilter{SubcategoryID: id})
	if err != nil {
		return domain.Subcategory{}, err
	}
	for _, c := range companies {
		c.CategoryID = categoryID
		if _, err := s.store.UpdateCompany(ctx, c); err != nil {
			return domain.Subcategory{}, fmt.Errorf("move company %d: %w", c.ID, err)
		}
	}
	return sc, nil
}

// DeleteSubcategory removes the subcategory and its companies.
func (s *CatalogService) DeleteSubcategory(ctx context.Context, id int64) error {
	if _, err := s.store.GetSubcategory(ctx, id); err != nil {
		return notFound("subcategory", err)
	}
	companies, err := s.store.ListCompanies(ctx, domain.CompanyFilter{SubcategoryID: id})
	if err != nil {
		return err
	}
	if err := s.deleteCompanies(ctx, companies); err != nil {
		return err
	}
	if err := ignoreNotFound(s.store.DeleteSubcategory(ctx, id)); err != nil {
		return err
	}
	log.Info().Int64("subcategory", id).Int("companies", len(companies)).Msg("subcategory deleted")
	return nil
}

// SubcategoryCompanies lists the companies of the subcategory subSlug within
// the category categorySlug.
func (s *CatalogService) SubcategoryCompanies(ctx context.Context, categorySlug, subSlug string) ([]domain.Company, error) {
	cat, err := s.store.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, notFound("category", err)
	}
	sc, err := s.store.GetSubcategoryBySlug(ctx, subSlug)
	if err != nil || sc.CategoryID != cat.ID {
		if err == nil {
			err = domain.ErrNotFound
		}
		return nil, notFound("subcategory", err)
	}
	return s.store.ListCompanies(ctx, domain.CompanyFilter{SubcategoryID: sc.ID})
}

func (s *CatalogService) CompaniesInSubcategorySlug(ctx context.Context, slug string) ([]domain.Company, error) {
	sc, err := s.store.GetSubcategoryBySlug(ctx, slug)
	if err != nil {
		return nil, notFound("subcategory", err)
	}
	return s.store.ListCompanies(ctx, domain.CompanyFilter{SubcategoryID: sc.ID})
}

// ---- companies ----

// General returns the "General" category and its "General" subcategory,
// creating whichever is missing.
func (s *CatalogService) General(ctx context.Context) (domain.Category, domain.Subcategory, error) {
	cat, err := s.EnsureCategory(ctx, domain.GeneralName)
	if err != nil {
		return domain.Category{}, domain.Subcategory{}, err
	}
	sub, err := s.EnsureSubcategory(ctx, cat.ID, domain.GeneralName)
	return cat, sub, err
}

// EnsureCategory returns the category named name, creating it when missing.
func (s *CatalogService) EnsureCategory(ctx context.Context, name string) (domain.Category, error) {
	c, err := s.store.FindCategoryByName(ctx, name)
	if !errors.Is(err, domain.ErrNotFound) {
		return c, err
	}
	c, err = s.CreateCategory(ctx, name, "")
	if errors.Is(err, domain.ErrConflict) {
		// created concurrently; category names are unique
		return s.store.FindCategoryByName(ctx, name)
	}
	return c, err
}

// EnsureSubcategory returns the subcategory named name under categoryID,
// creating it when missing.
func (s *CatalogService) EnsureSubcategory(ctx context.Context, categoryID int64, name string) (domain.Subcategory, error) {
	sc, err := s.store.FindSubcategoryByName(ctx, categoryID, name)
	if !errors.Is(err, domain.ErrNotFound) {
		return sc, err
	}
	mine, err := s.createSubcategory(ctx, categoryID, name, "")
	if err != nil {
		return domain.Subcategory{}, err
	}
	// Names are not unique per category, so concurrent callers may each
	// create one. The lowest id wins and the others remove their own row.
	winner, err := s.store.FindSubcategoryByName(ctx, categoryID, name)
	if err != nil {
		return domain.Subcategory{}, err
	}
	if winner.ID != mine.ID {
		if err := ignoreNotFound(s.store.DeleteSubcategory(ctx, mine.ID)); err != nil {
			return domain.Subcategory{}, fmt.Errorf("drop duplicate subcategory %d: %w", mine.ID, err)
		}
		log.Debug().Int64("kept", winner.ID).Int64("dropped", mine.ID).Str("name", name).Msg("concurrent subcategory create")
	}
	return winner, nil
}

// placement resolves the category/subcategory pair for a new company.
func (s *CatalogService) placement(ctx context.Context, categoryID, subcategoryID int64) (int64, int64, error) {
	switch {
	case categoryID == 0 && subcategoryID == 0:
		cat, sub, err := s.General(ctx)
		return cat.ID, sub.ID, err
	case subcategoryID != 0:
		sc, err := s.store.GetSubcategory(ctx, subcategoryID)
		if err != nil {
			return 0, 0, notFound("subcategory", err)
		}
		if categoryID != 0 && sc.CategoryID != categoryID {
			return 0, 0, fmt.Errorf("%w: subcategory does not belong to category", domain.ErrValidation)
		}
		return sc.CategoryID, sc.ID, nil
	default:
		if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
			return 0, 0, notFound("category", err)
		}
		sc, err := s.EnsureSubcategory(ctx, categoryID, domain.GeneralName)
		return categoryID, sc.ID, err
	}
}

func (s *CatalogService) companySlugTaken(self int64) slugTaken {
	return lookupTaken(s.store.GetCompanyBySlug, func(c domain.Company) int64 { return c.ID }, self)
}

func (s *CatalogService) CreateCompany(ctx context.Context, in CompanyInput) (domain.CompanyView, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return domain.CompanyView{}, err
	}
	catID, subID, err := s.placement(ctx, in.CategoryID, in.SubcategoryID)
	if err != nil {
		return domain.CompanyView{}, err
	}
	c, err := writeWithSlug(ctx, orDefault(CompanySlug(name), "company"), s.companySlugTaken(0), func(slug string) (domain.Company, error) {
		return s.store.CreateCompany(ctx, domain.Company{
			Name:          name,
			Slug:          slug,
			URL:           strings.TrimSpace(in.URL),
			Logo:          strings.TrimSpace(in.Logo),
			Description:   strings.TrimSpace(in.Description),
			CategoryID:    catID,
			SubcategoryID: subID,
		})
	})
	if err != nil {
		return domain.CompanyView{}, err
	}
	return companyView(ctx, s.store, c)
}

// UpdateCompany applies the provided fields. A new name regenerates the slug.
func (s *CatalogService) UpdateCompany(ctx context.Context, id int64, in CompanyInput) (domain.CompanyView, error) {
	c, err := s.store.GetCompany(ctx, id)
	if err != nil {
		return domain.CompanyView{}, notFound("company", err)
	}
	if v := strings.TrimSpace(in.URL); v != "" {
		c.URL = v
	}
	if v := strings.TrimSpace(in.Logo); v != "" {
		c.Logo = v
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		c.Description = v
	}
	if in.CategoryID != 0 || in.SubcategoryID != 0 {
		catID, subID := in.CategoryID, in.SubcategoryID
		if catID == 0 {
			catID = c.CategoryID
		}
		if subID == 0 {
			subID = c.SubcategoryID
		}
		sc, err := s.store.GetSubcategory(ctx, subID)
		if err != nil {
			return domain.CompanyView{}, notFound("subcategory", err)
		}
		if sc.CategoryID != catID {
			return domain.CompanyView{}, fmt.Errorf("%w: subcategory does not belong to category", domain.ErrValidation)
		}
		c.CategoryID, c.SubcategoryID = catID, subID
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || name == c.Name {
		if c, err = s.store.UpdateCompany(ctx, c); err != nil {
			return domain.CompanyView{}, err
		}
		return companyView(ctx, s.store, c)
	}
	c.Name = name
	c, err = writeWithSlug(ctx, orDefault(CompanySlug(name), "company"), s.companySlugTaken(c.ID), func(slug string) (domain.Company, error) {
		c.Slug = slug
		return s.store.UpdateCompany(ctx, c)
	})
	if err != nil {
		return domain.CompanyView{}, err
	}
	return companyView(ctx, s.store, c)
}

// DeleteCompany removes the company only; its reviews become orphans that
// every read path skips.
func (s *CatalogService) DeleteCompany(ctx context.Context, id int64) error {
	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return notFound("company", err)
	}
	s.evictStats(ctx, id)
	return nil
}

func (s *CatalogService) GetCompanyBySlug(ctx context.Context, slug string) (domain.CompanyView, error) {
	c, err := s.store.GetCompanyBySlug(ctx, slug)
	if err != nil {
		return domain.CompanyView{}, notFound("company", err)
	}
	return companyView(ctx, s.store, c)
}

// ListCompanies filters by category and/or subcategory and resolves each
// company's placement.
func (s *CatalogService) ListCompanies(ctx context.Context, f domain.CompanyFilter) ([]domain.CompanyView, error) {
	cs, err := s.store.ListCompanies(ctx, f)
	if err != nil {
		return nil, err
	}
	refs := map[string]*domain.Ref{}
	out := make([]domain.CompanyView, 0, len(cs))
	for _, c := range cs {
		v := domain.CompanyView{Company: c}
		if v.Category, err = s.cachedRef(ctx, refs, "c", c.CategoryID); err != nil {
			return nil, err
		}
		if v.Subcategory, err = s.cachedRef(ctx, refs, "s", c.SubcategoryID); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *CatalogService) cachedRef(ctx context.Context, refs map[string]*domain.Ref, kind string, id int64) (*domain.Ref, error) {
	if id == 0 {
		return nil, nil
	}
	key := fmt.Sprintf("%s%d", kind, id)
	if r, ok := refs[key]; ok {
		return r, nil
	}
	var ref *domain.Ref
	var err error
	if kind == "c" {
		var c domain.Category
		if c, err = s.store.GetCategory(ctx, id); err == nil {
			ref = &domain.Ref{ID: c.ID, Name: c.Name, Slug: c.Slug}
		}
	} else {
		var sc domain.Subcategory
		if sc, err = s.store.GetSubcategory(ctx, id); err == nil {
			ref = &domain.Ref{ID: sc.ID, Name: sc.Name, Slug: sc.Slug}
		}
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	refs[key] = ref
	return ref, nil
}

// BackfillSlugs assigns slugs to companies stored without one and returns
// how many were updated.
func (s *CatalogService) BackfillSlugs(ctx context.Context) (int, error) {
	cs, err := s.store.ListCompanies(ctx, domain.CompanyFilter{MissingSlug: true})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range cs {
		_, err := writeWithSlug(ctx, orDefault(CompanySlug(c.Name), "company"), s.companySlugTaken(c.ID), func(slug string) (domain.Company, error) {
			c.Slug = slug
			return s.store.UpdateCompany(ctx, c)
		})
		if err != nil {
			return n, fmt.Errorf("backfill company %d: %w", c.ID, err)
		}
		n++
	}
	return n, nil
}
