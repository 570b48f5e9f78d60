package observability_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/adapters/observability"
	"reviewhub/internal/domain"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so the vectors are non-empty
	observability.ObserveHTTP("/api/reviews", "GET", 200, 12*time.Millisecond)
	observability.ObserveReviewWrite("create", nil)
	observability.ObserveFeed("browse")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	assert.Contains(t, out, "reviewhub_http_requests_total")
	assert.Contains(t, out, `reviewhub_review_writes_total{op="create",result="ok"}`)
	assert.Contains(t, out, `reviewhub_feed_requests_total{kind="browse"}`)
}

func TestLabelErr(t *testing.T) {
	cases := map[string]error{
		"ok":        nil,
		"invalid":   fmt.Errorf("%w: rating", domain.ErrValidation),
		"denied":    domain.ErrForbidden,
		"not_found": fmt.Errorf("%w: company", domain.ErrNotFound),
		"conflict":  domain.ErrConflict,
		"error":     io.ErrUnexpectedEOF,
	}
	for want, err := range cases {
		assert.Equal(t, want, observability.LabelErr(err))
	}
}
