package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateRecord  = errors.New("duplicate record")
	ErrInvalidReference = errors.New("invalid reference")
)

// PostgreSQL error codes the repository translates into sentinel errors.
const (
	foreignKeyViolation pq.ErrorCode = "23503"
	uniqueViolation     pq.ErrorCode = "23505"
)

func isViolation(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

// translate maps constraint violations to sentinel errors and passes
// everything else through.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case isViolation(err, uniqueViolation):
		return ErrDuplicateRecord
	case isViolation(err, foreignKeyViolation):
		return ErrInvalidReference
	default:
		return err
	}
}
