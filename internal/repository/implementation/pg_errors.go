package implementation

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// ErrDuplicate is returned when an insert trips a unique constraint. Callers
// translate it into their own conflict error.
var ErrDuplicate = errors.New("duplicate record")

func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicate
	}
	return err
}
