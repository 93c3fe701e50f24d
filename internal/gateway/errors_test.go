package gateway

import (
	"context"
	"errors"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := map[ErrorType]string{
		ErrTypeTransport: "Transport Error",
		ErrTypeHTTP:      "HTTP Error",
		ErrTypeRejected:  "Protocol Rejection",
		ErrTypeDecode:    "Decode Error",
		ErrorType(42):    "ErrorType(42)",
	}
	for et, want := range tests {
		if got := et.String(); got != want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", int(et), got, want)
		}
	}
}

func TestNewTransportError_Timeout(t *testing.T) {
	err := NewTransportError("http://x/command", context.DeadlineExceeded)
	if !err.Timeout {
		t.Error("DeadlineExceeded should be classified as timeout")
	}
	if err.Message != "request timed out" {
		t.Errorf("Message = %q", err.Message)
	}

	err = NewTransportError("http://x/command", errors.New("connection refused"))
	if err.Timeout {
		t.Error("plain error classified as timeout")
	}
}

func TestDeviceError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &DeviceError{Type: ErrTypeTransport, Message: "gateway unreachable", Err: cause}

	if got := err.Error(); got != "Transport Error: gateway unreachable (caused by: boom)" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}

	plain := NewRejection("u", "gateway rejected the request", []byte("{XC_ERR}"))
	if got := plain.Error(); got != "Protocol Rejection: gateway rejected the request" {
		t.Errorf("Error() = %q", got)
	}
}

func TestClassifiers_NonDeviceError(t *testing.T) {
	err := errors.New("other")
	if IsTransportError(err) || IsRejection(err) || IsDecodeError(err) {
		t.Error("plain errors should not be classified")
	}
}
