package identity

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel kind for rejected arguments (stable
// for errors.Is and for mapping to API status codes).
var ErrInvalidInput = errors.New("invalid_input")

// OpError is a typed operation error with a stable Op + Kind contract for callers/tests.
// Msg may include human-readable context; do not include secrets.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e OpError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

func (e OpError) Unwrap() error { return e.Kind }

// IsInvalidInput reports whether err represents ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
