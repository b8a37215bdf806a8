package biz

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound returned by Table.Get when no record exists
	ErrNotFound = errors.New("record not found")
	// ErrInvalidNotification the notification lacks a bucket or key
	ErrInvalidNotification = errors.New("invalid notification")
	// ErrVersionConflict VersionedTable.Append found a different record under the same version
	ErrVersionConflict = errors.New("version already holds a different record")
)

// ExistenceCheckError the object store could not head the object
type ExistenceCheckError struct {
	Filepath string
	Err      error
}

func (e *ExistenceCheckError) Error() string {
	return fmt.Sprintf("existence check failed for %s: %v", e.Filepath, e.Err)
}

func (e *ExistenceCheckError) Unwrap() error { return e.Err }

// BodyFetchError the object body could not be downloaded
type BodyFetchError struct {
	Filepath string
	Err      error
}

func (e *BodyFetchError) Error() string {
	return fmt.Sprintf("body fetch failed for %s: %v", e.Filepath, e.Err)
}

func (e *BodyFetchError) Unwrap() error { return e.Err }

// HeaderParseError the sniffer returned an error
type HeaderParseError struct {
	Filepath string
	Err      error
}

func (e *HeaderParseError) Error() string {
	return fmt.Sprintf("header parse failed for %s: %v", e.Filepath, e.Err)
}

func (e *HeaderParseError) Unwrap() error { return e.Err }

// StoreError a metadata table read or write failed
type StoreError struct {
	Table    string
	Op       string
	Filepath string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s failed for %s: %v", e.Table, e.Op, e.Filepath, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ProcessingError any other failure while handling an event
type ProcessingError struct {
	Filepath string
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed for %s: %v", e.Filepath, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

func storeErr(table, op, filepath string, err error) error {
	return &StoreError{Table: table, Op: op, Filepath: filepath, Err: err}
}

// IsStoreError reports whether err wraps a StoreError
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsRetryable store and processing failures are worth redelivering
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProcessingError
	return IsStoreError(err) || errors.As(err, &pe)
}
