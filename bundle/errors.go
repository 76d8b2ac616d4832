package bundle

import (
	"errors"
	"fmt"
)

var (
	// ErrDataRequired is returned when a leaf spec carries no payload.
	ErrDataRequired = errors.New("envelope data required")
	// ErrSignerRequired is returned when no signing credential is supplied.
	ErrSignerRequired = errors.New("signer required")
	// ErrSignerInvalid is returned when a signing key cannot be parsed.
	ErrSignerInvalid = errors.New("invalid signing key")
	// ErrCompression is returned when a compressed stream cannot be read back.
	ErrCompression = errors.New("malformed compressed stream")
)

// DecodeError reports malformed or truncated bundle bytes. Decoded input may
// come straight off the chain, so decoding never panics and always surfaces
// the position that failed.
type DecodeError struct {
	Field  string
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed bundle: %s at offset %d", e.Field, e.Offset)
}

// InvariantViolationError identifies the envelope that broke the sentinel
// zero-field rule and which field it broke.
type InvariantViolationError struct {
	Index int
	Field string
	Value uint64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("bundle invariant violation: envelope %d has non-zero %s (%d)", e.Index, e.Field, e.Value)
}
