package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrFeedUnavailable = errors.New("feed unavailable")
	ErrRegionUnknown   = errors.New("region could not be resolved")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTimeout         = errors.New("operation timeout")
)

// TransientError marks a failure worth retrying: network hiccups,
// 5xx-equivalents, and explicit too-many-requests responses.
type TransientError struct {
	Op  string
	Err error
}

func (e TransientError) Error() string {
	return fmt.Sprintf("transient failure during %s: %v", e.Op, e.Err)
}

func (e TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is retryable
func IsTransient(err error) bool {
	var te TransientError
	return errors.As(err, &te)
}

// PermanentError marks a failure that retrying cannot fix: bad credentials,
// payloads rejected by the transport.
type PermanentError struct {
	Op  string
	Err error
}

func (e PermanentError) Error() string {
	return fmt.Sprintf("permanent failure during %s: %v", e.Op, e.Err)
}

func (e PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err as non-retryable
func Permanent(op string, err error) error {
	if err == nil {
		return nil
	}
	return PermanentError{Op: op, Err: err}
}

// IsPermanent reports whether err is non-retryable
func IsPermanent(err error) bool {
	var pe PermanentError
	return errors.As(err, &pe)
}

// MalformedEntryError represents a feed entry that could not be parsed.
// Entries carrying it are skipped and counted, never fatal.
type MalformedEntryError struct {
	Field  string
	Reason string
}

func (e MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed feed entry: field '%s': %s", e.Field, e.Reason)
}

// IsMalformed reports whether err is a malformed-entry error
func IsMalformed(err error) bool {
	var me MalformedEntryError
	return errors.As(err, &me)
}

// PersistenceError represents a durable-store write failure. The event it
// blocked must not be notified this tick.
type PersistenceError struct {
	Operation string
	Err       error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Operation, e.Err)
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence reports whether err is a durable-store failure
func IsPersistence(err error) bool {
	var pe PersistenceError
	return errors.As(err, &pe)
}
