package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ErlanBelekov/contacts-api/internal/auth/password"
	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/ErlanBelekov/contacts-api/internal/metrics"
	"github.com/ErlanBelekov/contacts-api/internal/repository"
	"golang.org/x/sync/semaphore"
)

const defaultTokenTTL = time.Hour

// Hashed once, then verified against when the email is unknown so that path
// costs one bcrypt comparison like a wrong password does.
const timingDummyPassword = "timing-equalizer-not-a-real-password"

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) bool
}

type tokenIssuer interface {
	Issue(accountID, email string, ttl time.Duration) (string, time.Time, error)
}

type AuthUsecase struct {
	accounts  repository.AccountRepository
	hasher    passwordHasher
	tokens    tokenIssuer
	tokenTTL  time.Duration
	slots     *semaphore.Weighted
	dummyHash func() string
}

type AuthOption func(*authOptions)

type authOptions struct {
	hashConcurrency int
}

// WithHashConcurrency caps how many bcrypt operations run at once. Zero or
// less means GOMAXPROCS.
func WithHashConcurrency(n int) AuthOption {
	return func(o *authOptions) { o.hashConcurrency = n }
}

func NewAuthUsecase(accounts repository.AccountRepository, hasher passwordHasher, tokens tokenIssuer, tokenTTL time.Duration, opts ...AuthOption) *AuthUsecase {
	o := authOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hashConcurrency <= 0 {
		o.hashConcurrency = runtime.GOMAXPROCS(0)
	}
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}

	return &AuthUsecase{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		slots:    semaphore.NewWeighted(int64(o.hashConcurrency)),
		dummyHash: sync.OnceValue(func() string {
			h, _ := hasher.Hash(timingDummyPassword)
			return h
		}),
	}
}

type LoginResult struct {
	Identity  domain.Identity
	Token     string
	ExpiresAt time.Time
}

// Register validates the credentials, normalizes the email and stores a new
// account. Checks run in order and stop at the first failure.
func (u *AuthUsecase) Register(ctx context.Context, email, plaintext string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || plaintext == "" {
		return nil, domain.ErrMissingCredentials
	}
	if !domain.ValidEmailShape(email) {
		return nil, domain.ErrInvalidEmailFormat
	}
	if utf8.RuneCountInString(plaintext) < domain.MinPasswordLength {
		return nil, domain.ErrWeakPassword
	}
	if len(plaintext) > password.MaxPasswordLength {
		return nil, domain.ErrPasswordTooLong
	}

	normalized := domain.NormalizeEmail(email)

	_, err := u.accounts.FindByEmail(ctx, normalized)
	switch {
	case err == nil:
		metrics.AuthEventsTotal.WithLabelValues("register", "email_taken").Inc()
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := u.hash(ctx, plaintext)
	if err != nil {
		return nil, err
	}

	// The insert is one atomic statement; let it finish even if the client
	// has gone away, the row is either fully written or not at all.
	account, err := u.accounts.Create(context.WithoutCancel(ctx), normalized, hash)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.AuthEventsTotal.WithLabelValues("register", "email_taken").Inc()
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	metrics.AuthEventsTotal.WithLabelValues("register", "success").Inc()
	return account, nil
}

// Login checks the credentials and issues a bearer token. Unknown email and
// wrong password both return domain.ErrInvalidCredentials.
func (u *AuthUsecase) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" || plaintext == "" {
		return nil, domain.ErrMissingCredentials
	}
	if len(plaintext) > password.MaxPasswordLength {
		metrics.AuthEventsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	account, err := u.accounts.FindByEmail(ctx, normalized)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("lookup account: %w", err)
		}
		if _, err := u.verify(ctx, plaintext, u.dummyHash()); err != nil {
			return nil, err
		}
		metrics.AuthEventsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := u.verify(ctx, plaintext, account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.AuthEventsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	signed, expiresAt, err := u.tokens.Issue(account.ID, account.Email, u.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.AuthEventsTotal.WithLabelValues("login", "success").Inc()
	return &LoginResult{
		Identity:  domain.Identity{AccountID: account.ID, Email: account.Email},
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func (u *AuthUsecase) hash(ctx context.Context, plaintext string) (string, error) {
	if err := u.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hash slot: %w", err)
	}
	defer u.slots.Release(1)

	start := time.Now()
	h, err := u.hasher.Hash(plaintext)
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

func (u *AuthUsecase) verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	if err := u.slots.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("wait for hash slot: %w", err)
	}
	defer u.slots.Release(1)

	start := time.Now()
	ok := u.hasher.Verify(plaintext, encoded)
	metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return ok, nil
}
