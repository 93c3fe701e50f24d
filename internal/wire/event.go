package wire

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventPrefix starts every pushed event
const EventPrefix = "{XC_EVT}"

// Event type tags used in the JSON envelope
const (
	EventTypeIR     = "IR"
	EventTypeSysVar = "SV"
)

// Kind is the value type of a system variable event
type Kind byte

// System variable kinds, keyed by their wire letter
const (
	KindInt   Kind = 'I'
	KindBool  Kind = 'B'
	KindStr   Kind = 'S'
	KindFloat Kind = 'F'
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindStr:
		return "Str"
	case KindFloat:
		return "Float"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

func parseKind(b byte) (Kind, bool) {
	switch k := Kind(b); k {
	case KindInt, KindBool, KindStr, KindFloat:
		return k, true
	}
	return 0, false
}

// Event is a decoded push event: *IREvent or *SysVarEvent
type Event interface {
	Type() string
	String() string
}

// IREvent carries received infrared data
type IREvent struct {
	Payload string
}

func (e *IREvent) Type() string { return EventTypeIR }

func (e *IREvent) String() string {
	return fmt.Sprintf("IR{payload=%s}", e.Payload)
}

// SysVarEvent reports a changed system variable
type SysVarEvent struct {
	Kind  Kind
	VarID string // Two characters, e.g. "07"
	Value string
}

func (e *SysVarEvent) Type() string { return EventTypeSysVar }

func (e *SysVarEvent) String() string {
	return fmt.Sprintf("SysVar{kind=%s, id=%s, value=%s}", e.Kind, e.VarID, e.Value)
}

// envelope fields are pointers so missing keys can be told apart from empty strings
type envelope struct {
	Type *string `json:"type"`
	Data *string `json:"data"`
}

// sysVarLayout: <Kind>:<2-char id>:<value>
const (
	sysVarIDStart    = 2
	sysVarIDEnd      = 4
	sysVarValueStart = 5
)

// HasEventPrefix reports whether raw carries the event prefix
func HasEventPrefix(raw []byte) bool {
	return strings.HasPrefix(string(raw), EventPrefix)
}

// ParseEvent decodes a datagram received on the event socket
func ParseEvent(raw []byte) (Event, error) {
	text := string(raw)
	if !strings.HasPrefix(text, EventPrefix) {
		return nil, decodeErr(FormatEvent, "missing "+EventPrefix+" prefix", raw, nil)
	}

	var env envelope
	if err := json.Unmarshal([]byte(text[len(EventPrefix):]), &env); err != nil {
		return nil, decodeErr(FormatEvent, "json format invalid", raw, err)
	}
	if env.Type == nil || env.Data == nil {
		return nil, decodeErr(FormatEvent, "json format not known", raw, nil)
	}

	switch *env.Type {
	case EventTypeIR:
		return &IREvent{Payload: *env.Data}, nil
	case EventTypeSysVar:
		return parseSysVarData(*env.Data, raw)
	default:
		return nil, decodeErr(FormatEvent, fmt.Sprintf("unknown event type %q", *env.Type), raw, nil)
	}
}

func parseSysVarData(data string, raw []byte) (*SysVarEvent, error) {
	if len(data) < sysVarValueStart || data[1] != ':' || data[sysVarIDEnd] != ':' {
		return nil, decodeErr(FormatEvent, fmt.Sprintf("malformed system variable data %q", data), raw, nil)
	}

	kind, ok := parseKind(data[0])
	if !ok {
		return nil, decodeErr(FormatEvent, "data type not known", raw, nil)
	}

	return &SysVarEvent{
		Kind:  kind,
		VarID: data[sysVarIDStart:sysVarIDEnd],
		Value: data[sysVarValueStart:],
	}, nil
}
