package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"reviewhub/internal/domain"
)

const errDuplicateEntry = 1062

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valTime(r domain.Review) any {
	if r.CreatedAt.IsZero() {
		return nil
	}
	return r.CreatedAt
}

// mapErr translates driver errors into domain errors. Duplicate keys on a
// slug index become ErrSlugTaken so callers can retry with a suffix.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDuplicateEntry {
		if strings.HasSuffix(duplicateKey(me.Message), "_slug") {
			return domain.ErrSlugTaken
		}
		return domain.ErrConflict
	}
	return err
}

// duplicateKey extracts the index name from a 1062 message such as
// "Duplicate entry 'x' for key 'categories.uk_categories_slug'".
func duplicateKey(msg string) string {
	const marker = "for key '"
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSuffix(msg[i+len(marker):], "'")
}

// affected maps a zero-row write to ErrNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// where accumulates AND-ed conditions and their args.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) in(col string, ids []int64) {
	ph := make([]string, len(ids))
	for i, id := range ids {
		ph[i] = "?"
		w.args = append(w.args, id)
	}
	w.conds = append(w.conds, col+" IN ("+strings.Join(ph, ",")+")")
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

type scanner interface{ Scan(dest ...any) error }

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var _ domain.Store = (*Repo)(nil)

// ---- reviews ----

func scanReview(s scanner, extra ...any) (domain.Review, error) {
	var r domain.Review
	dest := append([]any{
		&r.ID, &r.CompanyID, &r.UserID, &r.Rating, &r.Title, &r.Comment,
		&r.IsVerified, &r.HelpfulVotes, &r.ReportCount, &r.CreatedAt, &r.UpdatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return domain.Review{}, mapErr(err)
	}
	return r, nil
}

func (r *Repo) CreateReview(ctx context.Context, rv domain.Review) (domain.Review, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.CompanyID, rv.UserID, rv.Rating, rv.Title, rv.Comment,
		rv.IsVerified, rv.HelpfulVotes, rv.ReportCount, valTime(rv),
	)
	if err != nil {
		return domain.Review{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, err
	}
	return r.GetReview(ctx, id)
}

func (r *Repo) UpdateReview(ctx context.Context, rv domain.Review) (domain.Review, error) {
	if _, err := r.db.ExecContext(ctx, updateReviewSQL, rv.Rating, rv.Title, rv.Comment, rv.ID); err != nil {
		return domain.Review{}, mapErr(err)
	}
	return r.GetReview(ctx, rv.ID)
}

func (r *Repo) DeleteReview(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, deleteReviewSQL, id))
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	return scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
}

func (r *Repo) FindReview(ctx context.Context, companyID, userID int64) (domain.Review, error) {
	return scanReview(r.db.QueryRowContext(ctx, findReviewSQL, companyID, userID))
}

func (r *Repo) CountReviews(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countReviewsSQL).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) ListRatings(ctx context.Context, f domain.RatingFilter) ([]domain.RatingRow, error) {
	var w where
	if f.CompanyID != 0 {
		w.add("r.company_id = ?", f.CompanyID)
	}
	if f.CategoryID != 0 {
		w.add("c.category_id = ?", f.CategoryID)
	}
	rows, err := r.db.QueryContext(ctx, listRatingsSQL+w.String()+newestFirst, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RatingRow
	for rows.Next() {
		var rr domain.RatingRow
		if err := rows.Scan(&rr.ReviewID, &rr.CompanyID, &rr.CategoryID, &rr.Rating, &rr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *Repo) ListReviewDetails(ctx context.Context, q domain.DetailQuery) ([]domain.ReviewDetail, error) {
	var w where
	if len(q.IDs) > 0 {
		w.in("r.id", q.IDs)
	}
	if q.CompanyID != 0 {
		w.add("r.company_id = ?", q.CompanyID)
	}
	if q.UserID != 0 {
		w.add("r.user_id = ?", q.UserID)
	}
	if q.MinRating > 0 {
		w.add("r.rating >= ?", q.MinRating)
	}
	if q.RequireCategory {
		w.add("cat.id IS NOT NULL")
	}
	query := listDetailsSQL + w.String() + newestFirst
	if q.Limit > 0 {
		query += " LIMIT ?"
		w.args = append(w.args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ReviewDetail{}
	for rows.Next() {
		var d domain.ReviewDetail
		rv, err := scanReview(rows,
			&d.UserName, &d.UserImage,
			&d.CompanyName, &d.CompanySlug, &d.CompanyLogo,
			&d.CategoryID, &d.CategoryName, &d.CategorySlug,
		)
		if err != nil {
			return nil, err
		}
		d.Review = rv
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) ListResolvedReviewIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, listResolvedIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ---- categories ----

func scanCategory(s scanner) (domain.Category, error) {
	var c domain.Category
	if err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Category{}, mapErr(err)
	}
	return c, nil
}

func (r *Repo) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	res, err := r.db.ExecContext(ctx, insertCategorySQL, c.Name, c.Slug, valStr(c.Description))
	if err != nil {
		return domain.Category{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Category{}, err
	}
	return r.GetCategory(ctx, id)
}

func (r *Repo) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx, getCategorySQL, id))
}

func (r *Repo) GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx, getCategoryBySlugSQL, slug))
}

func (r *Repo) FindCategoryByName(ctx context.Context, name string) (domain.Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx, findCategoryByNameSQL, name))
}

func (r *Repo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteCategory(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, deleteCategorySQL, id))
}

// ---- subcategories ----

func scanSubcategory(s scanner) (domain.Subcategory, error) {
	var sc domain.Subcategory
	if err := s.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Slug, &sc.Description, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return domain.Subcategory{}, mapErr(err)
	}
	return sc, nil
}

func (r *Repo) CreateSubcategory(ctx context.Context, sc domain.Subcategory) (domain.Subcategory, error) {
	res, err := r.db.ExecContext(ctx, insertSubcategorySQL, sc.CategoryID, sc.Name, sc.Slug, valStr(sc.Description))
	if err != nil {
		return domain.Subcategory{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Subcategory{}, err
	}
	return r.GetSubcategory(ctx, id)
}

func (r *Repo) GetSubcategory(ctx context.Context, id int64) (domain.Subcategory, error) {
	return scanSubcategory(r.db.QueryRowContext(ctx, getSubcategorySQL, id))
}

func (r *Repo) GetSubcategoryBySlug(ctx context.Context, slug string) (domain.Subcategory, error) {
	return scanSubcategory(r.db.QueryRowContext(ctx, getSubcategoryBySlugSQL, slug))
}

func (r *Repo) FindSubcategoryByName(ctx context.Context, categoryID int64, name string) (domain.Subcategory, error) {
	return scanSubcategory(r.db.QueryRowContext(ctx, findSubcategoryByNameSQL, categoryID, name))
}

func (r *Repo) ListSubcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	var w where
	if categoryID != 0 {
		w.add("category_id = ?", categoryID)
	}
	rows, err := r.db.QueryContext(ctx, listSubcategoriesSQL+w.String()+" ORDER BY id", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Subcategory{}
	for rows.Next() {
		sc, err := scanSubcategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateSubcategory(ctx context.Context, sc domain.Subcategory) (domain.Subcategory, error) {
	if _, err := r.db.ExecContext(ctx, updateSubcategorySQL, sc.CategoryID, sc.Name, sc.Slug, valStr(sc.Description), sc.ID); err != nil {
		return domain.Subcategory{}, mapErr(err)
	}
	return r.GetSubcategory(ctx, sc.ID)
}

func (r *Repo) DeleteSubcategory(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, deleteSubcategorySQL, id))
}

// ---- companies ----

func scanCompany(s scanner) (domain.Company, error) {
	var c domain.Company
	var slug sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &slug, &c.URL, &c.Description, &c.Logo,
		&c.CategoryID, &c.SubcategoryID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Company{}, mapErr(err)
	}
	if slug.Valid {
		c.Slug = slug.String
	}
	return c, nil
}

func (r *Repo) CreateCompany(ctx context.Context, c domain.Company) (domain.Company, error) {
	res, err := r.db.ExecContext(ctx, insertCompanySQL,
		c.Name, valStr(c.Slug), c.URL, valStr(c.Description), c.Logo, c.CategoryID, c.SubcategoryID)
	if err != nil {
		return domain.Company{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Company{}, err
	}
	return r.GetCompany(ctx, id)
}

func (r *Repo) GetCompany(ctx context.Context, id int64) (domain.Company, error) {
	return scanCompany(r.db.QueryRowContext(ctx, getCompanySQL, id))
}

func (r *Repo) GetCompanyBySlug(ctx context.Context, slug string) (domain.Company, error) {
	if slug == "" {
		return domain.Company{}, domain.ErrNotFound
	}
	cs, err := r.ListCompanies(ctx, domain.CompanyFilter{Slug: slug})
	if err != nil {
		return domain.Company{}, err
	}
	if len(cs) == 0 {
		return domain.Company{}, domain.ErrNotFound
	}
	return cs[0], nil
}

func (r *Repo) ListCompanies(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, error) {
	var w where
	if f.CategoryID != 0 {
		w.add("category_id = ?", f.CategoryID)
	}
	if f.SubcategoryID != 0 {
		w.add("subcategory_id = ?", f.SubcategoryID)
	}
	if f.SubcategoryIDs != nil {
		if len(f.SubcategoryIDs) == 0 {
			return []domain.Company{}, nil
		}
		w.in("subcategory_id", f.SubcategoryIDs)
	}
	if f.Slug != "" {
		w.add("slug = ?", f.Slug)
	}
	if f.MissingSlug {
		w.add("(slug IS NULL OR slug = '')")
	}
	rows, err := r.db.QueryContext(ctx, listCompaniesSQL+w.String()+" ORDER BY id", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateCompany(ctx context.Context, c domain.Company) (domain.Company, error) {
	if _, err := r.db.ExecContext(ctx, updateCompanySQL,
		c.Name, valStr(c.Slug), c.URL, valStr(c.Description), c.Logo,
		c.CategoryID, c.SubcategoryID, c.ID); err != nil {
		return domain.Company{}, mapErr(err)
	}
	return r.GetCompany(ctx, c.ID)
}

func (r *Repo) DeleteCompany(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, deleteCompanySQL, id))
}

// ---- users ----

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ProfileImage, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, mapErr(err)
	}
	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Name, u.Email, u.PasswordHash, u.ProfileImage)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUser(ctx, id)
}

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserSQL, id))
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, findUserByEmailSQL, email))
}

func (r *Repo) UpdateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if _, err := r.db.ExecContext(ctx, updateUserSQL, u.Name, u.Email, u.PasswordHash, u.ProfileImage, u.ID); err != nil {
		return domain.User{}, mapErr(err)
	}
	return r.GetUser(ctx, u.ID)
}
