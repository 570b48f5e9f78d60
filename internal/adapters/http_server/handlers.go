package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"reviewhub/internal/adapters/observability"
	"reviewhub/internal/app"
	"reviewhub/internal/domain"
)

type Handlers struct {
	Accounts  *app.AccountService
	Catalog   *app.CatalogService
	Reviews   *app.ReviewService
	Stats     *app.StatsService
	Discovery *app.DiscoveryService
	Media     *app.MediaService
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	auth := RequireUser(h.Accounts)
	writes := s.writeLimit()

	s.mux.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(writes).Post("/register", h.register)
			r.With(writes).Post("/login", h.login)
			r.With(auth).Get("/me", h.me)
			r.With(auth, writes).Put("/me", h.updateMe)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.With(writes).Post("/", h.createCategory)
			r.With(writes).Delete("/{id}", h.deleteCategory)
			r.Get("/{slug}/companies", h.categoryCompanies)
			r.Get("/{slug}/companies-paginated", h.categoryCompaniesPaginated)
		})

		r.Route("/subcategories", func(r chi.Router) {
			r.Get("/", h.listSubcategories)
			r.With(writes).Post("/", h.createSubcategory)
			r.With(writes).Put("/{id}/move", h.moveSubcategory)
			r.With(writes).Delete("/{id}", h.deleteSubcategory)
			r.Get("/{categorySlug}/{subSlug}", h.subcategoryCompanies)
		})

		r.Route("/companies", func(r chi.Router) {
			r.Get("/latest-best-reviews", h.latestBestReviews)
			r.Get("/best-by-category", h.bestByCategory)
			r.Get("/slug/{slug}/with-ratings", h.companyWithRatings)
			r.Get("/slug/{slug}", h.companyBySlug)
			r.Get("/category/slug/{slug}", h.companiesByCategorySlug)
			r.Get("/subcategory/slug/{slug}", h.companiesBySubcategorySlug)
			r.Get("/category/{categoryId}", h.companiesByCategory)
			r.Get("/subcategory/{subcategoryId}", h.companiesBySubcategory)
			r.Get("/", h.listCompanies)
			r.With(writes).Post("/", h.createCompany)
			r.With(writes).Put("/{id}", h.updateCompany)
			r.With(writes).Delete("/{id}", h.deleteCompany)
			r.Get("/{id}/reviews/display", h.displayReviews)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.recentReviews)
			r.Get("/browse-mixed", h.browseMixed)
			r.Get("/stats/{companyId}", h.reviewStats)
			r.Get("/company/{companyId}", h.companyReviews)
			r.Get("/user/{userId}", h.userReviews)
			r.Get("/{id}", h.getReview)
			r.With(auth, writes).Post("/", h.createReview)
			r.With(auth, writes).Put("/{id}", h.updateReview)
			r.With(auth, writes).Delete("/{id}", h.deleteReview)
		})

		r.Route("/upload", func(r chi.Router) {
			r.With(writes).Post("/company-logo", h.uploadCompanyLogo)
			r.With(auth, writes).Post("/user-profile", h.uploadUserProfile)
			r.With(writes).Delete("/delete-image", h.deleteImage)
		})
	})
}

// ---- response helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal JSON response failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeCached writes v with a weak ETag and answers 304 when the client
// already holds this version.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("write body failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

var sentinels = []error{
	domain.ErrValidation, domain.ErrUnauthorized, domain.ErrForbidden,
	domain.ErrNotFound, domain.ErrConflict, domain.ErrSlugTaken,
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrSlugTaken):
		return http.StatusConflict
	case errors.Is(err, app.ErrMediaDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageOf drops the sentinel prefix of a wrapped error so clients see the detail.
func messageOf(err error) string {
	msg := err.Error()
	for _, s := range sentinels {
		if p := s.Error() + ": "; strings.HasPrefix(msg, p) {
			return strings.TrimPrefix(msg, p)
		}
	}
	return msg
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("method", r.Method).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: messageOf(err)})
}

// ---- request helpers ----

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return n, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, name)
	}
	return id, nil
}

func currentUser(r *http.Request) domain.User {
	u, _ := UserFrom(r.Context())
	return u
}

// ---- auth ----

type sessionResponse struct {
	domain.User
	Token string `json:"token"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.Accounts.Register(r.Context(), app.Registration{
		Name: req.Name, Email: req.Email, Password: req.Password, ProfileImage: req.ProfileImage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: s.User, Token: s.Token})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: s.User, Token: s.Token})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Accounts.Me(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) updateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.Accounts.UpdateProfile(r.Context(), currentUser(r).ID, app.ProfileUpdate{
		Name: req.Name, Email: req.Email, Password: req.Password, ProfileImage: req.ProfileImage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: s.User, Token: s.Token})
}

// ---- categories ----

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, cs)
}

func (h *Handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Catalog.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Catalog.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Category deleted successfully"})
}

// categoryCompanies lists companies placed in any subcategory of the category.
func (h *Handlers) categoryCompanies(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Catalog.CompaniesUnderCategorySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, cs)
}

func (h *Handlers) categoryCompaniesPaginated(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", app.DefaultCategoryLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	out, err := h.Discovery.CompaniesInCategory(r.Context(), chi.URLParam(r, "slug"), page, limit, q.Get("search"), q.Get("sort"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveFeed("category")
	writeCached(w, r, out)
}

// ---- subcategories ----

func (h *Handlers) listSubcategories(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "categoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	subs, err := h.Catalog.ListSubcategories(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, subs)
}

func (h *Handlers) createSubcategory(w http.ResponseWriter, r *http.Request) {
	var req subcategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sc, err := h.Catalog.CreateSubcategory(r.Context(), req.CategoryID, req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (h *Handlers) moveSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sc, err := h.Catalog.MoveSubcategory(r.Context(), id, req.NewCategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *Handlers) deleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Catalog.DeleteSubcategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Subcategory deleted successfully"})
}

func (h *Handlers) subcategoryCompanies(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Catalog.SubcategoryCompanies(r.Context(), chi.URLParam(r, "categorySlug"), chi.URLParam(r, "subSlug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, cs)
}

// ---- companies ----

func (h *Handlers) listCompanies(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "categoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	subcategoryID, err := queryID(r, "subcategoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCompanies(w, r, domain.CompanyFilter{CategoryID: categoryID, SubcategoryID: subcategoryID})
}

func (h *Handlers) writeCompanies(w http.ResponseWriter, r *http.Request, f domain.CompanyFilter) {
	cs, err := h.Catalog.ListCompanies(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, cs)
}

func (h *Handlers) companiesByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "categoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCompanies(w, r, domain.CompanyFilter{CategoryID: id})
}

func (h *Handlers) companiesBySubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "subcategoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCompanies(w, r, domain.CompanyFilter{SubcategoryID: id})
}

func (h *Handlers) companiesByCategorySlug(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Catalog.CompaniesInCategorySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, cs)
}

func (h *Handlers) companiesBySubcategorySlug(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Catalog.CompaniesInSubcategorySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, cs)
}

func (h *Handlers) companyBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.Catalog.GetCompanyBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, c)
}

func companyInput(req companyRequest) app.CompanyInput {
	return app.CompanyInput{
		Name: req.Name, URL: req.URL, Logo: req.Logo, Description: req.Description,
		CategoryID: req.CategoryID, SubcategoryID: req.SubcategoryID,
	}
}

func (h *Handlers) createCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Catalog.CreateCompany(r.Context(), companyInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req companyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Catalog.UpdateCompany(r.Context(), id, companyInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) deleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Catalog.DeleteCompany(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Company deleted successfully"})
}

// ---- discovery ----

func (h *Handlers) bestByCategory(w http.ResponseWriter, r *http.Request) {
	out, err := h.Discovery.BestCompaniesByCategory(r.Context(), app.DefaultCategoryCount, app.DefaultPerCategory)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveFeed("best_by_category")
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) latestBestReviews(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", app.LatestBestLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit > app.MaxPageLimit {
		limit = app.MaxPageLimit
	}
	out, err := h.Discovery.LatestBestReviews(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveFeed("latest_best")
	writeCached(w, r, out)
}

func (h *Handlers) companyWithRatings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Stats.CompanyWithRatings(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) displayReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Discovery.SelectDisplayReviews(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveFeed("display")
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) browseMixed(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", app.DefaultBrowseLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Discovery.BrowseMixed(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveFeed("browse_mixed")
	writeJSON(w, http.StatusOK, out)
}

// ---- reviews ----

type statsResponse struct {
	TotalReviews       int         `json:"totalReviews"`
	AverageRating      float64     `json:"averageRating"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}

func (h *Handlers) reviewStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "companyId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.Stats.CompanyStats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, statsResponse{
		TotalReviews:       st.ReviewCount,
		AverageRating:      st.AvgRating,
		RatingDistribution: st.Distribution,
	})
}

func (h *Handlers) recentReviews(w http.ResponseWriter, r *http.Request) {
	out, err := h.Reviews.Recent(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) companyReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "companyId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Reviews.ByCompany(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) userReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Reviews.ByUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Reviews.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, out)
}

func reviewInput(req reviewRequest) app.ReviewInput {
	return app.ReviewInput{CompanyID: req.CompanyID, Rating: req.Rating, Comment: req.Comment, Title: req.Title}
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.Reviews.Create(r.Context(), currentUser(r).ID, reviewInput(req))
	observability.ObserveReviewWrite("create", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *Handlers) updateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.Reviews.Update(r.Context(), currentUser(r).ID, id, reviewInput(req))
	observability.ObserveReviewWrite("update", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	err = h.Reviews.Delete(r.Context(), currentUser(r).ID, id)
	observability.ObserveReviewWrite("delete", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Review deleted successfully"})
}

// ---- uploads ----

type uploadResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
	Message  string `json:"message"`
}

// formImage opens the multipart file under field. A missing file reads as empty.
func formImage(w http.ResponseWriter, r *http.Request, field string) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxImageBytes+1<<20)
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return io.NopCloser(strings.NewReader("")), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid multipart upload", domain.ErrValidation)
	}
	return f, nil
}

func (h *Handlers) upload(w http.ResponseWriter, r *http.Request, field, folder, msg string) {
	f, err := formImage(w, r, field)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()
	blob, err := h.Media.UploadImage(r.Context(), folder, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, ImageURL: blob.URL, PublicID: blob.PublicID, Message: msg})
}

func (h *Handlers) uploadCompanyLogo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "logo", app.FolderCompanyLogos, "Company logo uploaded successfully")
}

func (h *Handlers) uploadUserProfile(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "profileImage", app.FolderUserProfiles, "Profile image uploaded successfully")
}

func (h *Handlers) deleteImage(w http.ResponseWriter, r *http.Request) {
	var req deleteImageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Media.DeleteImage(r.Context(), req.PublicID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Image deleted successfully"})
}
