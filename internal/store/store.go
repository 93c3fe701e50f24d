package store

import (
	"errors"
	"fmt"
	"strconv"
)

// Well-known state keys
const (
	KeyConnection = "info.connection"
	KeyReceivedIR = "receivedIrData"
	KeySendIR     = "sendIrData"
)

const sysVarKeyPrefix = "id"

// SysVarKey returns the state key of system variable adr
func SysVarKey(adr string) string {
	return sysVarKeyPrefix + adr
}

// BoolValue renders a boolean state value
func BoolValue(b bool) string {
	return strconv.FormatBool(b)
}

// Update is one state value to publish
type Update struct {
	Key   string
	Value string
}

// String returns a human-readable representation of the update
func (u Update) String() string {
	return fmt.Sprintf("%s=%s", u.Key, u.Value)
}

// Definition describes a state object. Declare creates it if it does not exist.
type Definition struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Type  string `json:"type"` // "string" or "boolean"
	Role  string `json:"role"`
	Read  bool   `json:"read"`
	Write bool   `json:"write"`
}

// Definitions of the fixed bridge states
var (
	ConnectionDefinition = Definition{
		Key: KeyConnection, Name: "Device or service connected", Type: "boolean",
		Role: "indicator.connected", Read: true, Write: false,
	}
	ReceivedIRDefinition = Definition{
		Key: KeyReceivedIR, Name: KeyReceivedIR, Type: "string",
		Role: "text", Read: true, Write: false,
	}
	SendIRDefinition = Definition{
		Key: KeySendIR, Name: KeySendIR, Type: "string",
		Role: "text", Read: true, Write: true,
	}
)

// SysVarDefinition returns the definition of system variable adr
func SysVarDefinition(adr string) Definition {
	return Definition{
		Key: SysVarKey(adr), Name: "sysvar" + adr, Type: "string",
		Role: "text", Read: true, Write: false,
	}
}

// Sink receives state values
type Sink interface {
	SetState(key, value string) error
}

// Store is the external state store
type Store interface {
	Sink

	// Declare creates the state object if it does not exist yet
	Declare(def Definition) error

	// Subscribe registers fn for external writes to key
	Subscribe(key string, fn func(value string)) error

	// Close releases the store
	Close() error
}

// Tee is a Store that also forwards every SetState to sinks
type Tee struct {
	Store
	sinks []Sink
}

// NewTee wraps primary so SetState reaches sinks as well
func NewTee(primary Store, sinks ...Sink) *Tee {
	return &Tee{Store: primary, sinks: sinks}
}

// SetState sets the value on the primary store and every sink
func (t *Tee) SetState(key, value string) error {
	errs := []error{t.Store.SetState(key, value)}
	for _, s := range t.sinks {
		errs = append(errs, s.SetState(key, value))
	}
	return errors.Join(errs...)
}
