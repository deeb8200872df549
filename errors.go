package packd

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a key does not exist (or has expired).
	ErrNotFound = errors.New("key not found")

	// ErrWrongType is returned when an operation is applied to a value of
	// the wrong kind, e.g. a list command on a string value.
	ErrWrongType = errors.New("operation against a value of the wrong kind")

	// ErrExists is returned by Restore when the target key already holds
	// a value.
	ErrExists = errors.New("key already exists")

	// ErrIndexRange is returned by LSet when the index is outside the list.
	ErrIndexRange = errors.New("index out of range")
)

// KeyError wraps a store error with the key it happened on.
type KeyError struct {
	Key string
	Err error
}

func keyErr(key string, err error) error {
	return &KeyError{key, err}
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%q: %v", e.Key, e.Err)
}
