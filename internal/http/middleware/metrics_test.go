package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersInflightAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	// Body-writing route: response size is observed.
	r.GET("/summaries", func(c *gin.Context) {
		c.String(http.StatusOK, `{"summaries":[]}`)
	})
	// Status-only route: size stays -1 and the size histogram is skipped.
	r.DELETE("/summaries", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Snapshot counters first so parallel tests cannot skew the deltas.
	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/summaries", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summaries", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /summaries -> %d", w.Code)
	}

	// Unmatched route: the path label falls back to the raw URL path.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/summaries", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /summaries -> %d", w.Code)
	}

	gotOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/summaries", "200"))
	if gotOK != baseOK+1 {
		t.Fatalf("counter GET /summaries 200 = %v; want %v", gotOK, baseOK+1)
	}

	got404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))
	if got404 != base404+1 {
		t.Fatalf("counter 404 fallback = %v; want %v", got404, base404+1)
	}

	// No request is left in flight once all three completed.
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
