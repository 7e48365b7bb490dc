package fxrates

import (
	"errors"
	"fmt"
)

// ErrInvalidAdapterParams is returned by an adapter constructor when its
// declared requirements (single-pair target, base name, base plural name)
// are not satisfied by the caller. This is a programming error: the
// Registry and Manager only ever construct adapters whose requirements
// they have already checked, so this should never surface in steady state.
var ErrInvalidAdapterParams = errors.New("invalid adapter parameters")

// ErrEmptyResult is returned by Transform when parsing succeeded but no
// usable rate was found in the page or payload.
var ErrEmptyResult = errors.New("empty result")

// NetworkError wraps a transport-level failure (DNS, connection refused,
// connection reset) reaching a source.
type NetworkError struct {
	Source string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Source, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports a source fetch that exceeded its deadline.
type Timeout struct {
	Source string
}

func (e *Timeout) Error() string {
	return fmt.Sprintf("%s: request timed out", e.Source)
}

// HttpError wraps a non-2xx HTTP response from a source.
type HttpError struct {
	Source     string
	StatusCode int
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("%s: http status %d", e.Source, e.StatusCode)
}

// ParseError wraps a failure to extract a rate from an otherwise successful
// response (unexpected HTML/JSON shape, missing selector, regex miss).
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AllSourcesFailed is returned by the Manager when both failsafe phases are
// exhausted without producing a usable rate.
type AllSourcesFailed struct {
	BaseCode string
	Errors   []error
}

func (e *AllSourcesFailed) Error() string {
	return fmt.Sprintf("all sources failed for base %s (%d errors)", e.BaseCode, len(e.Errors))
}

// StorageError wraps a failure persisting rates, always cause for aborting
// the current job and rolling back its open transaction.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// UnexpectedError wraps anything that does not fit the taxonomy above but
// still needs to be surfaced with context (a panic recovered mid-job, a
// nil adapter registered by mistake).
type UnexpectedError struct {
	Context string
	Err     error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error (%s): %v", e.Context, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }
