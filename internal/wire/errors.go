package wire

import (
	"errors"
	"fmt"
)

// ErrNotGateway is returned by ParseDiscoveryReply when a reply does not
// announce an AIO gateway. It is not a failure.
var ErrNotGateway = errors.New("reply is not an AIO gateway announcement")

// Payload formats reported in DecodeError.Format
const (
	FormatDiscovery = "discovery"
	FormatEvent     = "event"
	FormatSysVars   = "sysvars"
)

// DecodeError reports a malformed wire payload
type DecodeError struct {
	Format  string // Which wire format failed (FormatEvent, ...)
	Reason  string // Human-readable reason
	Payload []byte // Offending payload, for logging
	Err     error  // Underlying error (JSON syntax errors and the like)
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Format, e.Reason)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is, or wraps, a DecodeError
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func decodeErr(format, reason string, payload []byte, err error) *DecodeError {
	return &DecodeError{
		Format:  format,
		Reason:  reason,
		Payload: payload,
		Err:     err,
	}
}
