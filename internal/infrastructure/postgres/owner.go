package postgres

import (
	"fmt"
	"strings"
)

// ownerScope builds WHERE clauses that always start with the owner filter.
// Every contacts query goes through it so no call site can forget the
// predicate; extra conditions get placeholders numbered after the owner's.
type ownerScope struct {
	where []string
	args  []any
}

func scopedTo(ownerID string) *ownerScope {
	return &ownerScope{
		where: []string{"owner_id = $1"},
		args:  []any{ownerID},
	}
}

// and appends "column = $n".
func (s *ownerScope) and(column string, value any) *ownerScope {
	s.args = append(s.args, value)
	s.where = append(s.where, fmt.Sprintf("%s = $%d", column, len(s.args)))
	return s
}

// arg registers a value that is used outside the WHERE clause (SET lists) and
// returns its placeholder.
func (s *ownerScope) arg(value any) string {
	s.args = append(s.args, value)
	return fmt.Sprintf("$%d", len(s.args))
}

func (s *ownerScope) clause() string {
	return strings.Join(s.where, " AND ")
}
