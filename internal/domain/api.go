package domain

import "time"

// APIError is the body returned to clients for every failed request.
type APIError struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAPIError creates an APIError stamped with the current time.
func NewAPIError(status int, message string) APIError {
	return APIError{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// APIResponse is the generic envelope used by informational endpoints.
type APIResponse struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// MessageResponse carries a single human-readable status line.
type MessageResponse struct {
	Message string `json:"message"`
}
