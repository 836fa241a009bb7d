package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/uptrace/bun/driver/pgdriver"
)

const uniqueViolation = "23505"

// IsUniqueViolation recognises unique constraint failures from lib/pq, pgdriver and SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == uniqueViolation
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
