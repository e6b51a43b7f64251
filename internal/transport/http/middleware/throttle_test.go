package middleware_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/contacts-api/internal/ratelimit"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/middleware"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-redis/redis/v8"
)

// newThrottledEngine answers 200 for password "right" and 400 otherwise.
// It binds the body after the throttle already read it.
func newThrottledEngine(t *testing.T, limit int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	limiter := ratelimit.New(rdb, limit, time.Minute, "login")

	r := gin.New()
	r.POST("/login", middleware.LoginThrottle(limiter, slog.Default()), func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			c.Status(http.StatusTeapot)
			return
		}
		if req.Password == "right" {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusBadRequest)
	})
	return r, mr
}

func login(r http.Handler, email, password string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLoginThrottle_BlocksAfterLimit(t *testing.T) {
	r, _ := newThrottledEngine(t, 2)

	for i := 0; i < 2; i++ {
		if w := login(r, "a@b.com", "wrong"); w.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: status = %d, want 400", i+1, w.Code)
		}
	}

	w := login(r, "a@b.com", "wrong")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestLoginThrottle_KeyIncludesNormalizedEmail(t *testing.T) {
	r, _ := newThrottledEngine(t, 1)

	login(r, "a@b.com", "wrong")
	if w := login(r, " A@B.com", "wrong"); w.Code != http.StatusTooManyRequests {
		t.Errorf("case variant: status = %d, want 429", w.Code)
	}
	if w := login(r, "other@b.com", "wrong"); w.Code != http.StatusBadRequest {
		t.Errorf("other email: status = %d, want 400", w.Code)
	}
}

func TestLoginThrottle_SuccessResetsCounter(t *testing.T) {
	r, _ := newThrottledEngine(t, 2)

	login(r, "a@b.com", "wrong")
	if w := login(r, "a@b.com", "right"); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	login(r, "a@b.com", "wrong")
	if w := login(r, "a@b.com", "wrong"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 after reset", w.Code)
	}
}

func TestLoginThrottle_HandlerStillReadsBody(t *testing.T) {
	r, _ := newThrottledEngine(t, 5)

	if w := login(r, "a@b.com", "right"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: true}, errors.New("redis: connection refused")
}

func (brokenLimiter) Reset(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func TestLoginThrottle_FailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/login", middleware.LoginThrottle(brokenLimiter{}, slog.Default()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	if w := login(r, "a@b.com", "right"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
