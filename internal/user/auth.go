package user

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// TokenIssuer signs session tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(accountID uint, email, role string) (string, error)
}

// NormalizeEmail lower-cases and trims an address before it is stored or
// looked up, so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation
}
