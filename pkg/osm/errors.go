package osm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoResults indicates the geocoding service returned zero candidates
// for the requested city name.
var ErrNoResults = errors.New("no matching place found")

// ServiceError represents a failed call to an external OSM service,
// carrying enough information for the caller to classify the failure.
type ServiceError struct {
	Service    string // "nominatim" or "overpass"
	StatusCode int    // HTTP status code, 0 for transport-level failures
	Message    string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s service error (%d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s service error: %s", e.Service, e.Message)
}

// Busy reports whether the failure is rate limiting or transient
// unavailability, the class of errors worth retrying later.
func (e *ServiceError) Busy() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// NewServiceError creates a ServiceError for the given service and status.
func NewServiceError(service string, statusCode int, message string) *ServiceError {
	return &ServiceError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}
