package gateway

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/muurk/aiobridge/internal/wire"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates a socket-level failure (refused, unreachable, timeout)
	ErrTypeTransport ErrorType = iota
	// ErrTypeHTTP indicates a non-200 HTTP status
	ErrTypeHTTP
	// ErrTypeRejected indicates the gateway answered without the success marker
	ErrTypeRejected
	// ErrTypeDecode indicates a success answer whose payload could not be parsed
	ErrTypeDecode
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeRejected:
		return "Protocol Rejection"
	case ErrTypeDecode:
		return "Decode Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to the gateway
type DeviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	URL        string    // Request URL
	StatusCode int       // HTTP status code (if applicable)
	Body       string    // Response body (rejections only)
	Timeout    bool      // Transport error caused by a timeout
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// NewTransportError classifies a failed request
func NewTransportError(url string, err error) *DeviceError {
	timeout := os.IsTimeout(err)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}

	message := "gateway unreachable"
	if timeout {
		message = "request timed out"
	}
	return &DeviceError{
		Type:    ErrTypeTransport,
		Message: message,
		URL:     url,
		Timeout: timeout,
		Err:     err,
	}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(url string, statusCode int) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		URL:        url,
		StatusCode: statusCode,
	}
}

// NewRejection creates a protocol rejection carrying the gateway's answer
func NewRejection(url, message string, body []byte) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeRejected,
		Message: message,
		URL:     url,
		Body:    string(body),
	}
}

// NewDecodeError wraps a wire decode failure
func NewDecodeError(url string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeDecode,
		Message: "json format invalid",
		URL:     url,
		Err:     err,
	}
}

func errorType(err error) (ErrorType, bool) {
	var de *DeviceError
	if errors.As(err, &de) {
		return de.Type, true
	}
	return 0, false
}

// IsTransportError reports whether err is a transport or HTTP status failure
func IsTransportError(err error) bool {
	t, ok := errorType(err)
	return ok && (t == ErrTypeTransport || t == ErrTypeHTTP)
}

// IsRejection reports whether the gateway rejected the request
func IsRejection(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeRejected
}

// IsDecodeError reports whether the gateway's answer could not be decoded
func IsDecodeError(err error) bool {
	t, ok := errorType(err)
	return (ok && t == ErrTypeDecode) || wire.IsDecodeError(err)
}
