package middleware

import (
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/ErlanBelekov/contacts-api/internal/identity"
	"github.com/ErlanBelekov/contacts-api/internal/metrics"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/respond"
	"github.com/gin-gonic/gin"
)

type tokenVerifier interface {
	Verify(raw string) (domain.Identity, error)
}

// Auth requires "Authorization: Bearer <token>", verifies the token and
// attaches the caller's identity to the request context. Handlers behind it
// read the identity with identity.FromContext and never parse tokens.
func Auth(verifier tokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth_middleware")

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
			respond.Error(c, logger, domain.ErrMissingToken)
			return
		}

		id, err := verifier.Verify(raw)
		if err != nil {
			metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
			logger.DebugContext(c.Request.Context(), "token rejected", "error", err)
			respond.Error(c, logger, domain.ErrTokenInvalid)
			return
		}

		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// bearerToken accepts exactly two space-separated parts with a
// case-insensitive "Bearer" scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
