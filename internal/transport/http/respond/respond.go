// Package respond turns errors into HTTP responses. It is the only place
// that knows which status code and client message each error kind gets.
package respond

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ErlanBelekov/contacts-api/internal/auth/password"
	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/gin-gonic/gin"
)

// ErrInvalidBody is reported when the request body is not the expected JSON.
var ErrInvalidBody = errors.New("invalid request body")

const (
	MsgInternal           = "Internal server error"
	MsgInvalidBody        = "Invalid request body"
	MsgMissingCredentials = "Email and password are required"
	MsgInvalidEmail       = "Invalid email format"
	MsgWeakPassword       = "Password must be at least 6 characters"
	MsgEmailTaken         = "Email already used"
	MsgInvalidCredentials = "Invalid credentials"
	MsgTokenMissing       = "Token missing"
	MsgTokenInvalid       = "Token invalid"
	MsgContactNotFound    = "Contact not found"
	MsgInvalidID          = "Invalid contact id"
	MsgTooManyAttempts    = "Too many login attempts, try again later"
)

var msgPasswordTooLong = fmt.Sprintf("Password must be at most %d bytes", password.MaxPasswordLength)

// Message wraps a plain message in the JSON shape every response uses.
func Message(msg string) gin.H {
	return gin.H{"message": msg}
}

// Error aborts the request with the status and message for err. Only
// unexpected errors are logged at error level; their detail never reaches
// the client.
func Error(c *gin.Context, logger *slog.Logger, err error) {
	status, msg := classify(err)

	ctx := c.Request.Context()
	switch {
	case status != http.StatusInternalServerError:
		_ = c.Error(err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, context.Canceled):
		logger.InfoContext(ctx, "request cancelled", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	default:
		logger.ErrorContext(ctx, "request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}

	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, Message(msg))
}

// TooManyAttempts aborts with 429 and a Retry-After rounded up to whole
// seconds.
func TooManyAttempts(c *gin.Context, logger *slog.Logger, retryAfterSeconds int) {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	Error(c, logger, domain.ErrTooManyAttempts)
}

func classify(err error) (int, string) {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, ErrInvalidBody):
		return http.StatusBadRequest, MsgInvalidBody
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusBadRequest, MsgMissingCredentials
	case errors.Is(err, domain.ErrInvalidEmailFormat):
		return http.StatusBadRequest, MsgInvalidEmail
	case errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, MsgWeakPassword
	case errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, msgPasswordTooLong
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, MsgEmailTaken
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, MsgInvalidCredentials
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, MsgTokenMissing
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, MsgTokenInvalid
	case errors.Is(err, domain.ErrContactNotFound):
		return http.StatusNotFound, MsgContactNotFound
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest, MsgInvalidID
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, MsgTooManyAttempts
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}
