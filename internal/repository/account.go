package repository

import (
	"context"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
)

type AccountRepository interface {
	// Create inserts a new account. email must already be normalized.
	// Returns domain.ErrEmailTaken when the unique index rejects the row, so a
	// registration that lost a race reports the same error as one that lost
	// the pre-check.
	Create(ctx context.Context, email, passwordHash string) (*domain.Account, error)

	// FindByEmail returns domain.ErrAccountNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
}
