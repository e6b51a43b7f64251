package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong    = errors.New("password is too long")
	ErrEmailTaken         = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")

	ErrMissingToken    = errors.New("token missing")
	ErrTokenInvalid    = errors.New("token is invalid or expired")
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 6

// Matches local@domain.tld with no whitespace and exactly one @.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Account is a registered user. PasswordHash never leaves the server.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is what a verified token proves about the caller. It lives in the
// request context for one request and is never persisted.
type Identity struct {
	AccountID string
	Email     string
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmailShape(email string) bool {
	return emailShape.MatchString(email)
}
