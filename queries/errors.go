package queries

import (
	"github.com/jackc/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("RECORD_NOT_FOUND")
var ErrDuplicateKey = errors.New("DUPLICATE_KEY")
var ErrSerialization = errors.New("SERIALIZATION_FAILURE")

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// mapError turns driver errors into the storage sentinels above
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		switch pgerr.Code {
		case pgUniqueViolation:
			return &ConstraintError{Constraint: pgerr.ConstraintName}
		case pgSerializationFailure, pgDeadlockDetected:
			return ErrSerialization
		}
	}
	return err
}

// ConstraintError is a unique violation on a named constraint. It matches
// ErrDuplicateKey with errors.Is.
type ConstraintError struct {
	Constraint string
}

func (e *ConstraintError) Error() string {
	return ErrDuplicateKey.Error() + ": " + e.Constraint
}

func (e *ConstraintError) Unwrap() error {
	return ErrDuplicateKey
}
