package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/ErlanBelekov/contacts-api/internal/metrics"
	"github.com/ErlanBelekov/contacts-api/internal/ratelimit"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/respond"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// AttemptLimiter is satisfied by *ratelimit.Limiter.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
	Reset(ctx context.Context, key string) error
}

// LoginThrottle limits login attempts per client IP and email. A successful
// login clears the counter. When the limiter is unreachable, attempts go
// through.
func LoginThrottle(limiter AttemptLimiter, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "login_throttle")

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.ClientIP() + "|" + loginEmail(c)

		d, err := limiter.Allow(ctx, key)
		if err != nil {
			logger.WarnContext(ctx, "login throttle unavailable", "error", err)
		}
		if !d.Allowed {
			metrics.LoginThrottledTotal.Inc()
			respond.TooManyAttempts(c, logger, int(math.Ceil(d.RetryAfter.Seconds())))
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := limiter.Reset(ctx, key); err != nil {
				logger.WarnContext(ctx, "login throttle reset", "error", err)
			}
		}
	}
}

// loginEmail peeks at the body through gin's body cache so the handler can
// still bind it. Undecodable bodies share the empty-email bucket.
func loginEmail(c *gin.Context) string {
	var req struct {
		Email string `json:"email"`
	}
	_ = c.ShouldBindBodyWith(&req, binding.JSON)
	return domain.NormalizeEmail(req.Email)
}
