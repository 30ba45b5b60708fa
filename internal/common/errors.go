// Package common defines the error taxonomy shared by the storage layers.
// Callers should match kinds with errors.Is and extract details with errors.As.
package common

import (
	"errors"
	"fmt"
)

var (
	// Identity errors.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Local store errors.
	ErrDeviceStorageFull = errors.New("device storage full")

	// Remote store errors.
	ErrRemoteQuotaExceeded    = errors.New("remote quota exceeded")
	ErrRemoteSchemaMissing    = errors.New("remote schema missing")
	ErrRemotePermissionDenied = errors.New("remote permission denied")
	ErrRemoteBackend          = errors.New("remote backend error")

	// Migration errors.
	ErrSyncFailed   = errors.New("sync failed")
	ErrNotCloudMode = errors.New("not in cloud mode")
)

// messages are the user-presentable texts for each kind.
var messages = map[error]string{
	ErrNotAuthenticated:       "Please sign in to continue.",
	ErrDeviceStorageFull:      "Device storage is full. Delete some entries or photos and try again.",
	ErrRemoteQuotaExceeded:    "Cloud storage quota exceeded.",
	ErrRemoteSchemaMissing:    "Cloud database is not set up yet.",
	ErrRemotePermissionDenied: "Cloud database rejected the request. Check your account permissions.",
	ErrRemoteBackend:          "Cloud database error. Please try again later.",
}

// StoreError is a classified storage failure.
//
// Kind is one of the sentinel errors above, Op names the failing operation
// and Err is the underlying driver error.
type StoreError struct {
	Kind error
	Op   string
	Err  error
}

// NewStoreError classifies err under kind for the operation op.
func NewStoreError(kind error, op string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns a text fit for showing to the user.
func (e *StoreError) Message() string {
	if m, ok := messages[e.Kind]; ok {
		return m
	}
	return e.Kind.Error()
}

// SyncError reports a failed migration chunk. Offset is the index of the
// first entry of that chunk; re-running the migration resumes safely.
type SyncError struct {
	Offset int
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed at offset %d: %v", e.Offset, e.Err)
}

func (e *SyncError) Unwrap() []error {
	return []error{ErrSyncFailed, e.Err}
}

// UserMessage returns the presentable text for any error in the taxonomy,
// or a generic fallback.
func UserMessage(err error) string {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Message()
	}
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return fmt.Sprintf("Upload stopped at entry %d. Your local data is kept; try again.", syncErr.Offset)
	}
	for kind, m := range messages {
		if errors.Is(err, kind) {
			return m
		}
	}
	return "Something went wrong."
}
