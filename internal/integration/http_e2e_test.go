//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/goccy/go-json"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "reviewhub/internal/adapters/http_server"
	redisad "reviewhub/internal/adapters/redis"
	"reviewhub/internal/adapters/token"
	"reviewhub/internal/app"
	"reviewhub/internal/domain"
	mysqlrepo "reviewhub/internal/storage/mysql"
)

// ---------- helpers ----------

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviewhub",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/reviewhub?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	require.NoError(t, pool.Retry(func() error {
		var e error
		if db, e = sql.Open("mysql", dsn); e != nil {
			return e
		}
		return db.Ping()
	}), "connect mysql")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, mysqlrepo.Migrate(context.Background(), db))
	return db
}

type stack struct {
	repo *mysqlrepo.Repo
	ts   *httptest.Server
}

func newStack(t *testing.T) *stack {
	t.Helper()
	repo := mysqlrepo.New(startMySQL(t))
	mr := miniredis.RunT(t)
	cache := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	tokens, err := token.New("e2e-secret", time.Hour)
	require.NoError(t, err)

	srv := httpserver.New(httpserver.Options{Timeout: 10 * time.Second})
	srv.MountHandlers(&httpserver.Handlers{
		Accounts:  app.NewAccountService(repo, tokens),
		Catalog:   app.NewCatalogService(repo, cache),
		Reviews:   app.NewReviewService(repo, cache),
		Stats:     app.NewStatsService(repo, cache, time.Minute),
		Discovery: app.NewDiscoveryService(repo, rand.New(rand.NewPCG(7, 7))),
		Media:     app.NewMediaService(nil),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return &stack{repo: repo, ts: ts}
}

func (s *stack) send(t *testing.T, method, path, bearer string, body any, out any) int {
	t.Helper()
	rd := strings.NewReader("")
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, s.ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func (s *stack) signup(t *testing.T, name string) string {
	t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	code := s.send(t, "POST", "/api/auth/register", "", map[string]string{
		"name": name, "email": strings.ToLower(name) + "@example.com", "password": "pw-" + name,
	}, &out)
	require.Equal(t, http.StatusCreated, code)
	return out.Token
}

// ---------- the tests ----------

func TestHTTP_EndToEnd_CompanyStats(t *testing.T) {
	s := newStack(t)

	var cat domain.Category
	require.Equal(t, http.StatusCreated, s.send(t, "POST", "/api/categories", "", map[string]string{"name": "Electronics"}, &cat))
	var acme domain.CompanyView
	require.Equal(t, http.StatusCreated, s.send(t, "POST", "/api/companies", "", map[string]any{"name": "Acme", "categoryId": cat.ID}, &acme))
	require.Equal(t, "acme", acme.Slug)
	require.NotNil(t, acme.Subcategory)
	assert.Equal(t, domain.GeneralName, acme.Subcategory.Name)

	statsPath := fmt.Sprintf("/api/reviews/stats/%d", acme.ID)
	var empty struct {
		TotalReviews int `json:"totalReviews"`
	}
	require.Equal(t, http.StatusOK, s.send(t, "GET", statsPath, "", nil, &empty))
	assert.Zero(t, empty.TotalReviews, "zero stats are cached until a write evicts them")

	for i, rating := range []int{5, 5, 5, 4, 3} {
		tok := s.signup(t, fmt.Sprintf("Reviewer%d", i))
		code := s.send(t, "POST", "/api/reviews", tok, map[string]any{
			"companyId": acme.ID, "rating": rating, "comment": "an honest opinion of the place",
		}, nil)
		require.Equal(t, http.StatusCreated, code)
	}

	var wr struct {
		Company         domain.CompanyView `json:"company"`
		AvgRating       float64            `json:"avgRating"`
		ReviewCount     int                `json:"reviewCount"`
		RatingBreakdown map[string]int     `json:"ratingBreakdown"`
	}
	require.Equal(t, http.StatusOK, s.send(t, "GET", "/api/companies/slug/acme/with-ratings", "", nil, &wr))
	assert.Equal(t, 5, wr.ReviewCount)
	assert.InDelta(t, 4.4, wr.AvgRating, 1e-9)
	assert.Equal(t, map[string]int{"5": 3, "4": 1, "3": 1, "2": 0, "1": 0}, wr.RatingBreakdown)
	assert.Equal(t, "electronics", wr.Company.Category.Slug)

	// a duplicate review conflicts
	tok := s.signup(t, "Again")
	body := map[string]any{"companyId": acme.ID, "rating": 2, "comment": "second thoughts on this"}
	require.Equal(t, http.StatusCreated, s.send(t, "POST", "/api/reviews", tok, body, nil))
	assert.Equal(t, http.StatusConflict, s.send(t, "POST", "/api/reviews", tok, body, nil))
}

func TestHTTP_EndToEnd_RankingOrder(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	catalog := app.NewCatalogService(s.repo, nil)

	cat, err := catalog.CreateCategory(ctx, "Electronics", "")
	require.NoError(t, err)
	users := 0
	post := func(c domain.CompanyView, ratings ...int) {
		for _, r := range ratings {
			users++
			u, err := s.repo.CreateUser(ctx, domain.User{Name: fmt.Sprintf("U%d", users), Email: fmt.Sprintf("u%d@example.com", users)})
			require.NoError(t, err)
			_, err = s.repo.CreateReview(ctx, domain.Review{CompanyID: c.ID, UserID: u.ID, Rating: r, Title: "Review", Comment: "seeded for ranking"})
			require.NoError(t, err)
		}
	}
	mk := func(name string) domain.CompanyView {
		c, err := catalog.CreateCompany(ctx, app.CompanyInput{Name: name, CategoryID: cat.ID})
		require.NoError(t, err)
		return c
	}
	a, b, c := mk("A"), mk("B"), mk("C")
	post(a, 5, 5, 5, 5, 5, 4, 4, 4, 4, 4)
	post(b, 5, 4)
	post(c, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4)

	var ranked []domain.RankedCategory
	require.Equal(t, http.StatusOK, s.send(t, "GET", "/api/companies/best-by-category", "", nil, &ranked))
	require.Len(t, ranked, 1)
	var order []string
	for _, e := range ranked[0].Companies {
		order = append(order, e.Company)
	}
	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.Equal(t, 10, ranked[0].Companies[0].ReviewCount)

	var page domain.CategoryPage
	require.Equal(t, http.StatusOK, s.send(t, "GET", "/api/categories/electronics/companies-paginated?sort=rating", "", nil, &page))
	require.Len(t, page.Companies, 3)
	assert.Equal(t, "A", page.Companies[0].Name)
	assert.Equal(t, 3, page.Pagination.TotalCompanies)
}
