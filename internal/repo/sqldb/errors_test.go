package sqldb_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/mkrupp/socialsvc/internal/domain"
	"github.com/mkrupp/socialsvc/internal/repo/sqldb"
)

func TestTranslateError_Postgres(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code pq.ErrorCode
		want error
	}{
		{code: "23505", want: domain.ErrStorageDuplicateKey},
		{code: "23503", want: domain.ErrStorageForeignKey},
		{code: "23514", want: domain.ErrStorageConstraint},
		{code: "40P01", want: domain.ErrStorageDeadlock},
		{code: "40001", want: domain.ErrStorageSerialization},
		{code: "55P03", want: domain.ErrStorageLock},
		{code: "57014", want: domain.ErrStorageTimeout},
		{code: "42501", want: domain.ErrStoragePermission},
		{code: "28P01", want: domain.ErrStoragePermission},
		{code: "08006", want: domain.ErrStorageUnavailable},
		{code: "53300", want: domain.ErrStorageUnavailable},
		{code: "57P01", want: domain.ErrStorageUnavailable},
		{code: "42601", want: domain.ErrStorage},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			t.Parallel()

			//nolint:exhaustruct
			driverErr := &pq.Error{Code: tt.code, Message: "driver detail"}
			err := sqldb.TranslateError(fmt.Errorf("query: %w", driverErr))

			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrStorage)
			assert.ErrorIs(t, err, driverErr, "driver error stays in the chain")
		})
	}
}

func TestTranslateError_Generic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: domain.ErrStorageTimeout},
		{name: "bad connection", err: driver.ErrBadConn, want: domain.ErrStorageUnavailable},
		{name: "connection done", err: sql.ErrConnDone, want: domain.ErrStorageUnavailable},
		{name: "unknown", err: errors.New("boom"), want: domain.ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.ErrorIs(t, sqldb.TranslateError(tt.err), tt.want)
		})
	}
}

func TestTranslateError_PassThrough(t *testing.T) {
	t.Parallel()

	assert.NoError(t, sqldb.TranslateError(nil))
	assert.Equal(t, sql.ErrNoRows, sqldb.TranslateError(sql.ErrNoRows))

	translated := sqldb.TranslateError(errors.New("boom"))
	assert.Equal(t, translated, sqldb.TranslateError(translated))
}
