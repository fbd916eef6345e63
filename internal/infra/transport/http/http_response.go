package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkrupp/socialsvc/internal/domain"
)

// WriteJSON encodes body as the JSON response with the given status.
// A nil body writes the status with an empty payload.
func WriteJSON(w http.ResponseWriter, status int, body any) error {
	if body == nil {
		w.WriteHeader(status)

		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// WriteAPIError writes the standard error body for status and message.
func WriteAPIError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, domain.NewAPIError(status, message))
}
