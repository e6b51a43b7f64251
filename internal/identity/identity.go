// Package identity carries the authenticated caller through a request context.
// Only the Auth middleware writes it; handlers only read it.
package identity

import (
	"context"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
)

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached by the Auth middleware. ok is
// false when the request was never authenticated.
func FromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(domain.Identity)
	if !ok || id.AccountID == "" {
		return domain.Identity{}, false
	}
	return id, true
}

// AccountID is a shorthand for log enrichment. Returns "" if absent.
func AccountID(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.AccountID
}
