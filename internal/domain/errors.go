package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound signals an absent record; callers must not treat it as a
// storage failure.
var ErrNotFound = errors.New("not found")

// StorageError wraps engine-level failures surfaced by the repository.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// TransportError describes a failed or rejected fetch. StatusCode is zero
// when the request never produced a response.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
