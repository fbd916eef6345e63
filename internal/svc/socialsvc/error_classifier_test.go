package socialsvc_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkrupp/socialsvc/internal/domain"
	"github.com/mkrupp/socialsvc/internal/svc/socialsvc"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	driverErr := errors.New("pq: duplicate key value violates unique constraint \"account_username_key\"")

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantKind    string
	}{
		{
			name:        "invalid input",
			err:         domain.NewError(domain.ErrInvalidInput, "Username is blank. Account creation failed."),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Username is blank. Account creation failed.",
			wantKind:    "invalid_input",
		},
		{
			name:        "record missing",
			err:         domain.NewError(domain.ErrRecordMissing, "User with ID 9 does not exist."),
			wantStatus:  http.StatusNotFound,
			wantMessage: "User with ID 9 does not exist.",
			wantKind:    "record_missing",
		},
		{
			name: "rejection caused by a missing record stays a bad request",
			err: fmt.Errorf("delete: %w", domain.NewError(domain.ErrRequestRejected, "Message with ID 4 not found.").
				WithCause(domain.ErrRecordMissing)),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Message with ID 4 not found.",
			wantKind:    "request_rejected",
		},
		{
			name:        "bare reference not found",
			err:         domain.ErrReferenceNotFound,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "A referenced record does not exist.",
			wantKind:    "reference_not_found",
		},
		{
			name:        "authentication failed",
			err:         domain.NewError(domain.ErrAuthenticationFailed, "Authentication failed for account with username: a."),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Authentication failed for account with username: a.",
			wantKind:    "authentication_failed",
		},
		{
			name: "duplicate detected by storage keeps business reason",
			err: domain.NewError(domain.ErrDuplicateResource, "An account with the same username: a already exists.").
				WithCause(errors.Join(domain.ErrStorageDuplicateKey, driverErr)),
			wantStatus:  http.StatusConflict,
			wantMessage: "An account with the same username: a already exists.",
			wantKind:    "duplicate_resource",
		},
		{
			name:        "data integrity",
			err:         domain.NewError(domain.ErrDataIntegrity, "Expected 1 row affected."),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Expected 1 row affected.",
			wantKind:    "data_integrity",
		},
		{
			name:        "storage duplicate key hides driver text",
			err:         fmt.Errorf("insert: %w", errors.Join(domain.ErrStorageDuplicateKey, driverErr)),
			wantStatus:  http.StatusConflict,
			wantMessage: "A record with this identifier already exists",
			wantKind:    "storage_duplicate_key",
		},
		{
			name:        "storage foreign key",
			err:         errors.Join(domain.ErrStorageForeignKey, driverErr),
			wantStatus:  http.StatusConflict,
			wantMessage: "Database constraint violation occurred",
			wantKind:    "storage_foreign_key",
		},
		{
			name:        "storage check constraint",
			err:         errors.Join(domain.ErrStorageConstraint, driverErr),
			wantStatus:  http.StatusConflict,
			wantMessage: "Database constraint violation occurred",
			wantKind:    "storage_constraint",
		},
		{
			name:        "storage lock",
			err:         domain.ErrStorageLock,
			wantStatus:  http.StatusConflict,
			wantMessage: "Database resource is currently locked",
			wantKind:    "storage_lock",
		},
		{
			name:        "storage deadlock",
			err:         domain.ErrStorageDeadlock,
			wantStatus:  http.StatusConflict,
			wantMessage: "A database deadlock was detected",
			wantKind:    "storage_deadlock",
		},
		{
			name:        "storage serialization",
			err:         domain.ErrStorageSerialization,
			wantStatus:  http.StatusConflict,
			wantMessage: "The record was updated by another user while you were editing it",
			wantKind:    "storage_serialization",
		},
		{
			name:        "storage timeout",
			err:         domain.ErrStorageTimeout,
			wantStatus:  http.StatusRequestTimeout,
			wantMessage: "The database query timed out",
			wantKind:    "storage_timeout",
		},
		{
			name:        "storage permission",
			err:         domain.ErrStoragePermission,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Insufficient database permissions for this operation",
			wantKind:    "storage_permission",
		},
		{
			name:        "storage unavailable",
			err:         domain.ErrStorageUnavailable,
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "A temporary database error occurred, please try again",
			wantKind:    "storage_unavailable",
		},
		{
			name:        "generic storage fault",
			err:         errors.Join(domain.ErrStorage, driverErr),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "A database error occurred",
			wantKind:    "storage",
		},
		{
			name:        "unexpected error",
			err:         errors.New("nil pointer somewhere"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An unexpected error occurred. Please try again later.",
			wantKind:    "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := socialsvc.Classify(tt.err)

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.NotContains(t, got.Message, "pq:")
		})
	}
}
