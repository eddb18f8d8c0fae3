package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"calendar-autobot/pkg/log"
)

type recordingReporter struct {
	errs []error
}

func (r *recordingReporter) Report(ctx context.Context, err error, fields map[string]string) {
	r.errs = append(r.errs, err)
}

func newEngine(mw Middleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw.Recovery(), mw.Trace())
	r.POST("/users/:user_id/extract", mw.RateLimit(), func(c *gin.Context) {
		c.String(http.StatusOK, log.TraceIDFromContext(c.Request.Context()))
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerUser(t *testing.T) {
	// 10 per minute gives a burst of one request.
	r := newEngine(New(log.NewNop(), Config{RateLimitPerMin: 10}))

	if w := do(r, http.MethodPost, "/users/u1/extract", nil); w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/users/u1/extract", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/users/u2/extract", nil); w.Code != http.StatusOK {
		t.Fatalf("other user: expected 200, got %d", w.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	r := newEngine(New(log.NewNop(), Config{RateLimitPerMin: -1}))
	for i := 0; i < 20; i++ {
		if w := do(r, http.MethodPost, "/users/u1/extract", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimiterBurstAtLeastOne(t *testing.T) {
	rl := newRateLimiter(1)
	if rl.burst != 1 {
		t.Fatalf("expected burst 1, got %d", rl.burst)
	}
	if err := rl.Allow("k"); err != nil {
		t.Fatalf("expected first call allowed, got %v", err)
	}
}

func TestTrace(t *testing.T) {
	r := newEngine(New(log.NewNop(), Config{RateLimitPerMin: -1}))

	t.Run("reuses incoming id", func(t *testing.T) {
		w := do(r, http.MethodPost, "/users/u1/extract", map[string]string{RequestIDHeader: "req-123"})
		if got := w.Header().Get(RequestIDHeader); got != "req-123" {
			t.Errorf("expected header req-123, got %q", got)
		}
		if w.Body.String() != "req-123" {
			t.Errorf("expected trace id in context, got %q", w.Body.String())
		}
	})

	t.Run("generates id", func(t *testing.T) {
		w := do(r, http.MethodPost, "/users/u1/extract", nil)
		id := w.Header().Get(RequestIDHeader)
		if id == "" || w.Body.String() != id {
			t.Errorf("expected generated id echoed in context, header=%q body=%q", id, w.Body.String())
		}
	})
}

func TestRecovery(t *testing.T) {
	rep := &recordingReporter{}
	r := newEngine(New(log.NewNop(), Config{Reporter: rep}))

	w := do(r, http.MethodGet, "/panic", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if len(rep.errs) != 1 {
		t.Fatalf("expected 1 report, got %d", len(rep.errs))
	}
}
