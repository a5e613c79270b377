package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Trishit-H/tourhub/internal/http/middlewares"
)

func limitedRouter(limit int, window time.Duration) *gin.Engine {
	rl := middlewares.NewRateLimiter(limit, window)
	r := gin.New()
	r.GET("/ping", rl.Middleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})
	return r
}

func ping(r *gin.Engine, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	r := limitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if w := ping(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d", i, w.Code)
		}
	}

	w := ping(r, "10.0.0.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("429 response missing Retry-After header")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	r := limitedRouter(1, time.Minute)

	if w := ping(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("first client blocked: %d", w.Code)
	}
	if w := ping(r, "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client not limited: %d", w.Code)
	}
	// a different address keeps its own budget
	if w := ping(r, "10.0.0.2:1234"); w.Code != http.StatusOK {
		t.Fatalf("second client blocked by first client's budget: %d", w.Code)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	r := limitedRouter(1, 20*time.Millisecond)

	if w := ping(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	if w := ping(r, "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", w.Code)
	}

	time.Sleep(30 * time.Millisecond)

	if w := ping(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("budget did not reset after the window: %d", w.Code)
	}
}
