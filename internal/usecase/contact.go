package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/ErlanBelekov/contacts-api/internal/repository"
	"github.com/google/uuid"
)

var errNoOwner = errors.New("contact operation without an owner")

type ContactUsecase struct {
	repo repository.ContactRepository
}

func NewContactUsecase(repo repository.ContactRepository) *ContactUsecase {
	return &ContactUsecase{repo: repo}
}

type ContactInput struct {
	FirstName string
	LastName  string
	Phone     string
}

func (u *ContactUsecase) List(ctx context.Context, ownerID string) ([]*domain.Contact, error) {
	if ownerID == "" {
		return nil, errNoOwner
	}
	contacts, err := u.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (u *ContactUsecase) Get(ctx context.Context, id, ownerID string) (*domain.Contact, error) {
	if err := checkScope(id, ownerID); err != nil {
		return nil, err
	}
	c, err := u.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// Create stamps the contact with ownerID; input has no way to name another
// owner.
func (u *ContactUsecase) Create(ctx context.Context, ownerID string, input ContactInput) (*domain.Contact, error) {
	if ownerID == "" {
		return nil, errNoOwner
	}

	v := &domain.ValidationError{}
	c := &domain.Contact{
		OwnerID:   ownerID,
		FirstName: checkField(v, "firstName", input.FirstName),
		LastName:  checkField(v, "lastName", input.LastName),
		Phone:     checkField(v, "phone", input.Phone),
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	created, err := u.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return created, nil
}

// Update validates only the fields present in patch.
func (u *ContactUsecase) Update(ctx context.Context, id, ownerID string, patch domain.ContactPatch) (*domain.Contact, error) {
	if err := checkScope(id, ownerID); err != nil {
		return nil, err
	}

	v := &domain.ValidationError{}
	patch.FirstName = checkOptional(v, "firstName", patch.FirstName)
	patch.LastName = checkOptional(v, "lastName", patch.LastName)
	patch.Phone = checkOptional(v, "phone", patch.Phone)
	if err := v.Err(); err != nil {
		return nil, err
	}

	updated, err := u.repo.Update(ctx, id, ownerID, patch)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return updated, nil
}

func (u *ContactUsecase) Delete(ctx context.Context, id, ownerID string) error {
	if err := checkScope(id, ownerID); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func checkScope(id, ownerID string) error {
	if ownerID == "" {
		return errNoOwner
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidIdentifier
	}
	return nil
}

func checkField(v *domain.ValidationError, field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field + " is required.")
		return value
	}
	if field == "phone" {
		if n := utf8.RuneCountInString(value); n < domain.MinPhoneLength || n > domain.MaxPhoneLength {
			v.Add(fmt.Sprintf("phone must be between %d and %d characters.", domain.MinPhoneLength, domain.MaxPhoneLength))
		}
	}
	return value
}

func checkOptional(v *domain.ValidationError, field string, value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := checkField(v, field, *value)
	return &trimmed
}
