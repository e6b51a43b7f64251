package repository

import (
	"context"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
)

// ContactRepository methods all take the owner's account ID and never touch
// rows owned by anyone else. A row that exists under another owner is
// reported as domain.ErrContactNotFound, exactly like a missing row.
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	List(ctx context.Context, ownerID string) ([]*domain.Contact, error)
	GetByID(ctx context.Context, id, ownerID string) (*domain.Contact, error)
	Update(ctx context.Context, id, ownerID string, patch domain.ContactPatch) (*domain.Contact, error)
	Delete(ctx context.Context, id, ownerID string) error
}
