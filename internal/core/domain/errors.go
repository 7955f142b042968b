package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// Rich error types below unwrap to these sentinels so callers can use errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable indicates the search backend never reached an
	// operational health status within the readiness budget.
	ErrBackendUnavailable = errors.New("search backend unavailable")

	// ErrIndexCreateFailed indicates the backend rejected index creation.
	ErrIndexCreateFailed = errors.New("index creation failed")

	// ErrPartialIndexFailure indicates a bulk write was only partially applied.
	// Documents that were written are not rolled back.
	ErrPartialIndexFailure = errors.New("some documents failed to index")

	// ErrInvalidQuery indicates an empty or malformed search or suggest request.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidField indicates a field name outside the known text fields.
	ErrInvalidField = errors.New("invalid field")

	// ErrBackendRequestFailed indicates a transport or response error from the backend.
	ErrBackendRequestFailed = errors.New("backend request failed")
)

// BackendError carries the diagnostic detail of a failed backend call.
type BackendError struct {
	// Op names the backend operation (e.g. "search", "indices.create").
	Op string

	// Status is the HTTP status reported by the backend, 0 for transport errors.
	Status int

	// Detail is the raw diagnostic payload returned by the backend.
	Detail string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *BackendError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Detail)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

// Unwrap exposes both the sentinel and the transport cause.
func (e *BackendError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrBackendRequestFailed, e.Err}
	}
	return []error{ErrBackendRequestFailed}
}

// IndexCreateError reports a rejected index creation with the backend's payload.
type IndexCreateError struct {
	Index  string
	Status int
	Detail string
	Err    error
}

func (e *IndexCreateError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("create index %q: status %d: %s", e.Index, e.Status, e.Detail)
	}
	return fmt.Sprintf("create index %q: %v", e.Index, e.Err)
}

// Unwrap returns ErrIndexCreateFailed and the underlying cause.
func (e *IndexCreateError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrIndexCreateFailed, e.Err}
	}
	return []error{ErrIndexCreateFailed}
}

// PartialIndexError is returned when a bulk write reports per-document failures.
type PartialIndexError struct {
	Outcome BulkOutcome
}

func (e *PartialIndexError) Error() string {
	return fmt.Sprintf("%d of %d documents failed to index (batch %s)",
		len(e.Outcome.Failures), e.Outcome.Total, e.Outcome.BatchID)
}

// Unwrap returns ErrPartialIndexFailure.
func (e *PartialIndexError) Unwrap() error {
	return ErrPartialIndexFailure
}
