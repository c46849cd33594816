// Package dberrors inspects PostgreSQL driver errors so repositories can map
// constraint violations onto domain errors.
package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation
const pgUniqueViolation = "23505"

// IsDuplicateConstraintError reports whether err is a unique violation on the
// named constraint. Matching on the constraint name lets a repository tell
// apart multiple unique columns on the same table.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgUniqueViolation &&
		pgErr.ConstraintName == constraintName
}
