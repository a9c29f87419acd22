package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the schema tooling reacts to.
const (
	pgUndefinedTable  = "42P01"
	pgCheckViolation  = "23514"
	pgUniqueViolation = "23505"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsMissingTableError reports whether err means the queried table does not exist.
func IsMissingTableError(err error) bool {
	if err == nil {
		return false
	}
	if pgErrorCode(err) == pgUndefinedTable {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") ||
		(strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist"))
}

// IsConstraintViolation reports whether err is a check or unique constraint failure.
func IsConstraintViolation(err error) bool {
	switch pgErrorCode(err) {
	case pgCheckViolation, pgUniqueViolation:
		return true
	}
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
