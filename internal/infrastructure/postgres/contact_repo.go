package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contactColumns = `id, owner_id, first_name, last_name, phone, created_at, updated_at`

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	query := `
		INSERT INTO contacts (owner_id, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + contactColumns

	created, err := scanContact(r.pool.QueryRow(ctx, query, c.OwnerID, c.FirstName, c.LastName, c.Phone))
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return created, nil
}

func (r *ContactRepository) List(ctx context.Context, ownerID string) ([]*domain.Contact, error) {
	scope := scopedTo(ownerID)
	query := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		WHERE %s
		ORDER BY last_name ASC, first_name ASC, id ASC`,
		contactColumns, scope.clause())

	rows, err := r.pool.Query(ctx, query, scope.args...)
	if err != nil {
		return nil, mapContactErr("list contacts", err)
	}
	defer rows.Close()

	contacts := []*domain.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapContactErr("iterate contacts", err)
	}
	return contacts, nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Contact, error) {
	scope := scopedTo(ownerID).and("id", id)
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE %s`, contactColumns, scope.clause())

	return scanContact(r.pool.QueryRow(ctx, query, scope.args...))
}

// Update applies only the fields present in patch. An empty patch is a
// read, so the caller still learns whether the contact is visible.
func (r *ContactRepository) Update(ctx context.Context, id, ownerID string, patch domain.ContactPatch) (*domain.Contact, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id, ownerID)
	}

	scope := scopedTo(ownerID).and("id", id)
	set := []string{"updated_at = NOW()"}
	if patch.FirstName != nil {
		set = append(set, "first_name = "+scope.arg(*patch.FirstName))
	}
	if patch.LastName != nil {
		set = append(set, "last_name = "+scope.arg(*patch.LastName))
	}
	if patch.Phone != nil {
		set = append(set, "phone = "+scope.arg(*patch.Phone))
	}

	query := fmt.Sprintf(`
		UPDATE contacts
		SET    %s
		WHERE  %s
		RETURNING %s`,
		strings.Join(set, ", "), scope.clause(), contactColumns)

	return scanContact(r.pool.QueryRow(ctx, query, scope.args...))
}

func (r *ContactRepository) Delete(ctx context.Context, id, ownerID string) error {
	scope := scopedTo(ownerID).and("id", id)

	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE `+scope.clause(), scope.args...)
	if err != nil {
		return mapContactErr("delete contact", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(&c.ID, &c.OwnerID, &c.FirstName, &c.LastName, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, mapContactErr("scan contact", err)
	}
	return &c, nil
}

// A non-UUID id reaching Postgres fails the text->uuid cast; report it as the
// caller's mistake rather than a server error.
func mapContactErr(op string, err error) error {
	if isPgCode(err, pgInvalidTextRepresent) {
		return domain.ErrInvalidIdentifier
	}
	return fmt.Errorf("%s: %w", op, err)
}
