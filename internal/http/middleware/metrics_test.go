package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsRequestsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/contacts", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/contacts", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contacts", nil))

	after := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/contacts", "200"))
	if after != before+1 {
		t.Fatalf("counter = %v; want %v", after, before+1)
	}
}

func TestMetrics_FallsBackToRawPath(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	// No route registered: Gin serves 404 and FullPath() is empty.

	before := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	after := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))
	if after != before+1 {
		t.Fatalf("counter = %v; want %v", after, before+1)
	}
}

func TestMetrics_InflightReturnsToZero(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight after request = %v; want 0", got)
	}
}
