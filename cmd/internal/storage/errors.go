package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrExists is returned by Create when the key is already present
	// in the namespace.
	ErrExists = errors.New("record already exists")

	// ErrNotFound is returned when the addressed record is absent.
	ErrNotFound = errors.New("record not found")

	// ErrCorrupt is returned when stored bytes cannot be decoded.
	// Corruption is a hard error: it is never papered over by returning
	// an empty record.
	ErrCorrupt = errors.New("record corrupt")

	// ErrInvalidKey is returned for keys or namespaces that are empty
	// or would escape the data directory.
	ErrInvalidKey = errors.New("invalid record key")
)

// CorruptError carries the location of an undecodable record.
type CorruptError struct {
	Namespace string
	Key       string
	Err       error
}

func (e CorruptError) Error() string {
	return fmt.Sprintf("%s/%s: %v: %v", e.Namespace, e.Key, ErrCorrupt, e.Err)
}

func (e CorruptError) Unwrap() error { return ErrCorrupt }

// IsNotFound reports whether err represents ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsExists reports whether err represents ErrExists.
func IsExists(err error) bool { return errors.Is(err, ErrExists) }

// IsCorrupt reports whether err represents ErrCorrupt.
func IsCorrupt(err error) bool { return errors.Is(err, ErrCorrupt) }
