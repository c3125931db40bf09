package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"

	"promo-platform/internal/domain"
)

// SQLSTATE codes the repositories react to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeInvalidTextRepr      = "22P02"
	codeStringTooLong        = "22001"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// classify wraps a driver error in the matching domain sentinel. Errors that
// are already domain errors, or that no sentinel describes, are returned as is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		if pgconn.Timeout(err) {
			return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, pgErr.ConstraintName)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, pgErr.ConstraintName)
	case codeCheckViolation, codeInvalidTextRepr, codeStringTooLong:
		return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, pgErr.ConstraintName)
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
		return fmt.Errorf("%w: %s", domain.ErrUnavailable, pgErr.Message)
	default:
		return err
	}
}
