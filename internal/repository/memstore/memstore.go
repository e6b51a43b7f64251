// Package memstore holds in-memory repositories with the same observable
// behavior as the Postgres ones: case-insensitive unique emails and
// owner-scoped contacts. Tests use it in place of a database.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/google/uuid"
)

type Accounts struct {
	mu      sync.Mutex
	byEmail map[string]domain.Account
}

func NewAccounts() *Accounts {
	return &Accounts{byEmail: make(map[string]domain.Account)}
}

func (s *Accounts) Create(_ context.Context, email, passwordHash string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := s.byEmail[key]; ok {
		return nil, domain.ErrEmailTaken
	}
	now := time.Now().UTC()
	a := domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byEmail[key] = a
	return &a, nil
}

func (s *Accounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (s *Accounts) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEmail)
}

type Contacts struct {
	mu   sync.Mutex
	byID map[string]domain.Contact
}

func NewContacts() *Contacts {
	return &Contacts{byID: make(map[string]domain.Contact)}
}

func (s *Contacts) Create(_ context.Context, c *domain.Contact) (*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	stored := *c
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.byID[stored.ID] = stored
	return &stored, nil
}

func (s *Contacts) List(_ context.Context, ownerID string) ([]*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*domain.Contact{}
	for _, c := range s.byID {
		if c.OwnerID == ownerID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Contacts) GetByID(_ context.Context, id, ownerID string) (*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.owned(id, ownerID)
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	return &c, nil
}

func (s *Contacts) Update(_ context.Context, id, ownerID string, patch domain.ContactPatch) (*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.owned(id, ownerID)
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	if patch.Empty() {
		return &c, nil
	}
	if patch.FirstName != nil {
		c.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		c.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	c.UpdatedAt = time.Now().UTC()
	s.byID[id] = c
	return &c, nil
}

func (s *Contacts) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(id, ownerID); !ok {
		return domain.ErrContactNotFound
	}
	delete(s.byID, id)
	return nil
}

// Len counts contacts across every owner.
func (s *Contacts) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Contacts) owned(id, ownerID string) (domain.Contact, bool) {
	c, ok := s.byID[id]
	if !ok || c.OwnerID != ownerID {
		return domain.Contact{}, false
	}
	return c, true
}
