package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrContactNotFound   = errors.New("contact not found")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

const (
	MinPhoneLength = 10
	MaxPhoneLength = 20
)

type Contact struct {
	ID        string
	OwnerID   string
	FirstName string
	LastName  string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactPatch is a partial update. Nil fields are left unchanged.
type ContactPatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

func (p ContactPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil
}

// ValidationError collects every problem found in client input so the caller
// can report them together.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, " ")
}

func (e *ValidationError) Add(problem string) {
	e.Problems = append(e.Problems, problem)
}

// Err returns nil when nothing was added, so callers can `return v.Err()`.
func (e *ValidationError) Err() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
