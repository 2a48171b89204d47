package roads

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures for the transport layer.
type Kind int

const (
	// KindFetchFailed covers any transport or parse failure not otherwise
	// classified. It is the zero value so unclassified errors fail generic.
	KindFetchFailed Kind = iota

	// KindInvalidInput means the city name was empty or whitespace-only.
	KindInvalidInput

	// KindCityNotFound means the geocoder returned zero candidates.
	KindCityNotFound

	// KindEmptyRoadSet means the city resolved but no renderable roads
	// survived filtering.
	KindEmptyRoadSet

	// KindServiceBusy means an external service signaled rate limiting or
	// transient unavailability.
	KindServiceBusy
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindCityNotFound:
		return "city_not_found"
	case KindEmptyRoadSet:
		return "empty_road_set"
	case KindServiceBusy:
		return "service_busy"
	default:
		return "fetch_failed"
	}
}

// Error is a pipeline failure with a user-facing message and a kind the
// transport layer maps to a status category. The wrapped cause carries
// detail for server-side logging only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain. Unclassified
// errors report KindFetchFailed.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindFetchFailed
}

// UserMessage extracts the user-facing message from an error chain,
// falling back to the generic failure copy.
func UserMessage(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Message
	}
	return "Failed to fetch road data. Please try again."
}

// ErrEmptyRoadSet signals that assembly produced no renderable segments.
// The pipeline wraps it with a city-specific user message.
var ErrEmptyRoadSet = errors.New("no renderable roads in response")

// InvalidInputError reports a missing city name.
func InvalidInputError() *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Message: "City name is required",
	}
}

// CityNotFoundError reports a geocoding miss for the given city.
func CityNotFoundError(city string, err error) *Error {
	return &Error{
		Kind:    KindCityNotFound,
		Message: fmt.Sprintf("No road data found for %q. Try a different spelling or a nearby major city.", city),
		Err:     err,
	}
}

// EmptyRoadSetError reports that a resolved city has no renderable roads.
func EmptyRoadSetError(city string, err error) *Error {
	return &Error{
		Kind:    KindEmptyRoadSet,
		Message: fmt.Sprintf("No roads could be rendered for %q.", city),
		Err:     err,
	}
}

// ServiceBusyError reports rate limiting or transient unavailability of an
// external service.
func ServiceBusyError(err error) *Error {
	return &Error{
		Kind:    KindServiceBusy,
		Message: "The map data service is busy. Please try again in a moment.",
		Err:     err,
	}
}

// FetchFailedError reports any other transport or parse failure.
func FetchFailedError(err error) *Error {
	return &Error{
		Kind:    KindFetchFailed,
		Message: "Failed to fetch road data. Please try again.",
		Err:     err,
	}
}
