package socialsvc

import (
	"errors"
	"net/http"

	"github.com/mkrupp/socialsvc/internal/domain"
	http_ "github.com/mkrupp/socialsvc/internal/infra/transport/http"
)

// Classification is the client-facing outcome of a failed request.
type Classification struct {
	Status  int
	Message string
	// Kind is a stable label for logs and metrics
	Kind string
}

type classRule struct {
	kind    error
	label   string
	status  int
	message string // returned when the error carries no reason, or always for storage faults
}

// Business kinds surface their reason. RequestRejected is checked before
// RecordMissing and ReferenceNotFound so rejections caused by a missing
// record stay a 400.
//
//nolint:gochecknoglobals
var businessRules = []classRule{
	{domain.ErrRequestRejected, "request_rejected", http.StatusBadRequest, "The request could not be processed."},
	{domain.ErrInvalidInput, "invalid_input", http.StatusBadRequest, "The request contains invalid input."},
	{domain.ErrReferenceNotFound, "reference_not_found", http.StatusBadRequest, "A referenced record does not exist."},
	{domain.ErrRecordMissing, "record_missing", http.StatusNotFound, "The requested record was not found."},
	{domain.ErrAuthenticationFailed, "authentication_failed", http.StatusUnauthorized, "Authentication failed."},
	{domain.ErrDuplicateResource, "duplicate_resource", http.StatusConflict, "The resource already exists."},
	{domain.ErrDataIntegrity, "data_integrity", http.StatusUnprocessableEntity, "The data could not be stored consistently."},
}

// Storage faults never surface driver text. Specific kinds precede the
// constraint and generic kinds they wrap.
//
//nolint:gochecknoglobals
var storageRules = []classRule{
	{domain.ErrStorageDuplicateKey, "storage_duplicate_key", http.StatusConflict,
		"A record with this identifier already exists"},
	{domain.ErrStorageForeignKey, "storage_foreign_key", http.StatusConflict,
		"Database constraint violation occurred"},
	{domain.ErrStorageConstraint, "storage_constraint", http.StatusConflict,
		"Database constraint violation occurred"},
	{domain.ErrStorageLock, "storage_lock", http.StatusConflict,
		"Database resource is currently locked"},
	{domain.ErrStorageDeadlock, "storage_deadlock", http.StatusConflict,
		"A database deadlock was detected"},
	{domain.ErrStorageSerialization, "storage_serialization", http.StatusConflict,
		"The record was updated by another user while you were editing it"},
	{domain.ErrStorageTimeout, "storage_timeout", http.StatusRequestTimeout,
		"The database query timed out"},
	{domain.ErrStoragePermission, "storage_permission", http.StatusForbidden,
		"Insufficient database permissions for this operation"},
	{domain.ErrStorageUnavailable, "storage_unavailable", http.StatusServiceUnavailable,
		"A temporary database error occurred, please try again"},
	{domain.ErrStorage, "storage", http.StatusInternalServerError,
		"A database error occurred"},
}

// Classify maps any error to exactly one Classification. Unknown errors map
// to a generic internal fault.
func Classify(err error) Classification {
	for _, rule := range businessRules {
		if errors.Is(err, rule.kind) {
			message, ok := domain.ReasonOf(err)
			if !ok || message == "" {
				message = rule.message
			}

			return Classification{Status: rule.status, Message: message, Kind: rule.label}
		}
	}

	for _, rule := range storageRules {
		if errors.Is(err, rule.kind) {
			return Classification{Status: rule.status, Message: rule.message, Kind: rule.label}
		}
	}

	return Classification{
		Status:  http.StatusInternalServerError,
		Message: http_.InternalErrorMessage,
		Kind:    "internal",
	}
}
