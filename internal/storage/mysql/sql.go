package mysql

// Note: `comment` is a keyword in some contexts; keep it quoted everywhere.

// -----------------------------------------------------------------------------
// REVIEWS
// -----------------------------------------------------------------------------

const insertReviewSQL = "INSERT INTO reviews\n  (company_id, user_id, rating, title, `comment`, is_verified, helpful_votes, report_count, created_at)\nVALUES\n  (?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP(3)))"

const updateReviewSQL = "UPDATE reviews SET rating = ?, title = ?, `comment` = ?, updated_at = CURRENT_TIMESTAMP(3) WHERE id = ?"

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

const reviewColumns = "r.id, r.company_id, r.user_id, r.rating, r.title, r.`comment`, r.is_verified, r.helpful_votes, r.report_count, r.created_at, r.updated_at"

const getReviewSQL = `SELECT ` + reviewColumns + ` FROM reviews r WHERE r.id = ?`

const findReviewSQL = `SELECT ` + reviewColumns + ` FROM reviews r WHERE r.company_id = ? AND r.user_id = ?`

const countReviewsSQL = `SELECT COUNT(*) FROM reviews`

// Ratings only exist for reviews whose company exists.
const listRatingsSQL = `
SELECT r.id, r.company_id, c.category_id, r.rating, r.created_at
FROM reviews r
JOIN companies c ON c.id = r.company_id
`

// Author and company are required; the category is optional.
const listDetailsSQL = `
SELECT ` + reviewColumns + `,
  u.name, u.profile_image,
  c.name, COALESCE(c.slug, ''), c.logo,
  COALESCE(cat.id, 0), COALESCE(cat.name, ''), COALESCE(cat.slug, '')
FROM reviews r
JOIN users u       ON u.id = r.user_id
JOIN companies c   ON c.id = r.company_id
LEFT JOIN categories cat ON cat.id = c.category_id
`

const listResolvedIDsSQL = `
SELECT r.id
FROM reviews r
JOIN users u         ON u.id = r.user_id
JOIN companies c     ON c.id = r.company_id
JOIN categories cat  ON cat.id = c.category_id
ORDER BY r.id
`

const newestFirst = ` ORDER BY r.created_at DESC, r.id DESC`

// -----------------------------------------------------------------------------
// CATALOG
// -----------------------------------------------------------------------------

const insertCategorySQL = `INSERT INTO categories (name, slug, description) VALUES (?, ?, ?)`

const categoryColumns = `id, name, slug, COALESCE(description, ''), created_at, updated_at`

const getCategorySQL = `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

const getCategoryBySlugSQL = `SELECT ` + categoryColumns + ` FROM categories WHERE slug = ?`

const findCategoryByNameSQL = `SELECT ` + categoryColumns + ` FROM categories WHERE name = ?`

const listCategoriesSQL = `SELECT ` + categoryColumns + ` FROM categories ORDER BY id`

const deleteCategorySQL = `DELETE FROM categories WHERE id = ?`

const insertSubcategorySQL = `INSERT INTO subcategories (category_id, name, slug, description) VALUES (?, ?, ?, ?)`

const subcategoryColumns = `id, category_id, name, slug, COALESCE(description, ''), created_at, updated_at`

const getSubcategorySQL = `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE id = ?`

const getSubcategoryBySlugSQL = `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE slug = ?`

const findSubcategoryByNameSQL = `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE category_id = ? AND name = ? ORDER BY id LIMIT 1`

const listSubcategoriesSQL = `SELECT ` + subcategoryColumns + ` FROM subcategories`

const updateSubcategorySQL = `
UPDATE subcategories
SET category_id = ?, name = ?, slug = ?, description = ?, updated_at = CURRENT_TIMESTAMP(3)
WHERE id = ?
`

const deleteSubcategorySQL = `DELETE FROM subcategories WHERE id = ?`

const insertCompanySQL = `
INSERT INTO companies
  (name, slug, url, description, logo, category_id, subcategory_id)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const companyColumns = `id, name, slug, url, COALESCE(description, ''), logo, category_id, subcategory_id, created_at, updated_at`

const getCompanySQL = `SELECT ` + companyColumns + ` FROM companies WHERE id = ?`

const listCompaniesSQL = `SELECT ` + companyColumns + ` FROM companies`

const updateCompanySQL = `
UPDATE companies
SET name = ?, slug = ?, url = ?, description = ?, logo = ?,
    category_id = ?, subcategory_id = ?, updated_at = CURRENT_TIMESTAMP(3)
WHERE id = ?
`

const deleteCompanySQL = `DELETE FROM companies WHERE id = ?`

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const insertUserSQL = `INSERT INTO users (name, email, password_hash, profile_image) VALUES (?, ?, ?, ?)`

const userColumns = `id, name, email, password_hash, profile_image, created_at, updated_at`

const getUserSQL = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

const findUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

const updateUserSQL = `
UPDATE users
SET name = ?, email = ?, password_hash = ?, profile_image = ?, updated_at = CURRENT_TIMESTAMP(3)
WHERE id = ?
`
