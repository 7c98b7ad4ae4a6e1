package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	pgForeignKeyCode   = "23503"
	pgDuplicateKeyCode = "23505"
	pgCheckCode        = "23514"
)

// MapError translates database errors to domain errors.
// sql.ErrNoRows and foreign key violations (23503) map to notFoundErr, since
// both mean the referenced row does not exist for the caller. Unique
// violations (23505) map to duplicateErr. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	switch code, _ := violation(err); code {
	case pgForeignKeyCode:
		return notFoundErr
	case pgDuplicateKeyCode:
		return duplicateErr
	}

	return err
}

// IsCheckViolation reports whether err is a CHECK constraint violation,
// returning the violated constraint name.
func IsCheckViolation(err error) (string, bool) {
	code, constraint := violation(err)
	return constraint, code == pgCheckCode
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// returning the violated constraint or index name.
func IsUniqueViolation(err error) (string, bool) {
	code, constraint := violation(err)
	return constraint, code == pgDuplicateKeyCode
}

func violation(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
