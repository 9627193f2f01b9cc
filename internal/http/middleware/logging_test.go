package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() { gin.SetMode(gin.TestMode) }

var uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	rid := w.Header().Get("X-Request-ID")
	if !uuidShape.MatchString(rid) {
		t.Fatalf("generated id %q is not a UUID", rid)
	}
}

func TestRequestID_PropagatesIncoming(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "client-id-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-id-1" {
		t.Fatalf("id = %q; want propagated client value", got)
	}
}

func TestLogger_InstallsRequestScopedLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger())

	var sawLogger bool
	r.GET("/x", func(c *gin.Context) {
		_, sawLogger = c.Get("logger")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if !sawLogger {
		t.Fatal("request-scoped logger not stored in context")
	}
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
	if body := w.Body.String(); !regexp.MustCompile(`"code":"internal_error"`).MatchString(body) {
		t.Fatalf("body = %s", body)
	}
}

func TestLoggerFrom_NilAndMissingContext(t *testing.T) {
	// Must not panic and must return a usable logger.
	lg := LoggerFrom(nil)
	lg.Debug().Msg("ok")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	lg = LoggerFrom(c)
	lg.Debug().Msg("ok")
}
