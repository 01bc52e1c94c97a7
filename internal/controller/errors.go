package controller

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCircuitOpen is returned while the breaker rejects calls after
	// repeated transport failures.
	ErrCircuitOpen = errors.New("controller circuit breaker is open")

	// ErrNotAuthenticated is returned by tenant-scoped calls made before
	// a successful login.
	ErrNotAuthenticated = errors.New("session is not authenticated")

	// ErrNoTenant is returned when the profile carries no tenant id.
	ErrNoTenant = errors.New("profile response has no tenant_id")

	// ErrInvalidResponse marks a 2xx body that fails presence checks.
	ErrInvalidResponse = errors.New("invalid response from controller")
)

// APIError is a non-2xx controller response.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("controller %s failed: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("controller %s failed: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// IsUnauthorized reports a rejected credential.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ConnectionError is a transport-level failure.
type ConnectionError struct {
	Operation string
	Cause     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("controller %s: connection error: %v", e.Operation, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// IsUnauthorized reports whether err carries a 401/403 from the controller.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// IsTransport reports whether err is a connection failure or an open breaker.
func IsTransport(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr) || errors.Is(err, ErrCircuitOpen)
}
