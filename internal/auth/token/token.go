// Package token issues and verifies the HS256 bearer tokens handed out at
// login. Tokens are self-contained: any process holding the secret can verify
// one without a session lookup, and a token stays valid until it expires.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptySecret = errors.New("token: signing secret must not be empty")

// Claims is the token payload: sub, iat and exp from the registered set plus
// the account email for display.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type Service struct {
	secret []byte
	now    func() time.Time
	leeway time.Duration
}

type Option func(*Service)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLeeway tolerates clock skew on exp and iat. Zero by default.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) { s.leeway = d }
}

func NewService(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	s := &Service{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for the account that expires ttl from now.
func (s *Service) Issue(accountID, email string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks structure, signature and expiry (exp == now counts as
// expired). Every failure matches domain.ErrTokenInvalid; the wrapped cause
// is for server-side logs only.
func (s *Service) Verify(raw string) (domain.Identity, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	if !tok.Valid {
		return domain.Identity{}, domain.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject", domain.ErrTokenInvalid)
	}

	return domain.Identity{AccountID: claims.Subject, Email: claims.Email}, nil
}
