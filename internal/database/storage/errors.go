package storage

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

// translateWriteErr maps constraint violations from either driver onto
// domain.ErrConflict so callers see the same error on postgres and sqlite.
func translateWriteErr(err error, what string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return domain.Conflict("%s already exists", what)
		case "23503":
			return domain.Conflict("%s is still referenced", what)
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return domain.Conflict("%s already exists", what)
		case sqlite3.ErrConstraintForeignKey:
			return domain.Conflict("%s is still referenced", what)
		}
	}

	return fmt.Errorf("write %s: %w", what, err)
}
