package sqlite

import (
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/planbook/pkg/types"
)

// isUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	// Without extended result codes only the primary code is set.
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}

// writeError wraps a failed write. Constraint violations also wrap
// ErrDuplicateKey so callers can test for them with errors.Is.
func writeError(action string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", action, types.ErrDuplicateKey, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
