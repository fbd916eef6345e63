package sqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/socialsvc/internal/domain"
)

// TranslateError joins a driver error with the domain storage fault it
// represents. The driver error stays in the chain for logging. sql.ErrNoRows
// and already translated errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) || errors.Is(err, domain.ErrStorage) {
		return err
	}

	return errors.Join(storageKind(err), err)
}

func storageKind(err error) error {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return sqliteKind(liteErr.Code())
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return postgresKind(pqErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ErrStorageTimeout
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return domain.ErrStorageUnavailable
	default:
		return domain.ErrStorage
	}
}

func sqliteKind(code int) error {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return domain.ErrStorageDuplicateKey
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return domain.ErrStorageForeignKey
	}

	switch code & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return domain.ErrStorageConstraint
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return domain.ErrStorageLock
	case sqlite3.SQLITE_INTERRUPT:
		return domain.ErrStorageTimeout
	case sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH, sqlite3.SQLITE_READONLY:
		return domain.ErrStoragePermission
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
		return domain.ErrStorageUnavailable
	default:
		return domain.ErrStorage
	}
}

func postgresKind(err *pq.Error) error {
	switch err.Code.Name() {
	case "unique_violation":
		return domain.ErrStorageDuplicateKey
	case "foreign_key_violation":
		return domain.ErrStorageForeignKey
	case "deadlock_detected":
		return domain.ErrStorageDeadlock
	case "serialization_failure":
		return domain.ErrStorageSerialization
	case "lock_not_available":
		return domain.ErrStorageLock
	case "query_canceled":
		return domain.ErrStorageTimeout
	case "insufficient_privilege":
		return domain.ErrStoragePermission
	case "admin_shutdown", "crash_shutdown", "cannot_connect_now":
		return domain.ErrStorageUnavailable
	}

	switch err.Code.Class() {
	case "23":
		return domain.ErrStorageConstraint
	case "28":
		return domain.ErrStoragePermission
	case "08", "53":
		return domain.ErrStorageUnavailable
	default:
		return domain.ErrStorage
	}
}
