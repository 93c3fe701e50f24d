package session

import (
	"errors"
	"fmt"
)

// Phase is the binding status of a session
type Phase int

const (
	// Unbound is the initial phase for an any-gateway target
	Unbound Phase = iota
	// AwaitingSpecificMatch waits for the configured MAC or IP to reply
	AwaitingSpecificMatch
	// Bound is terminal: the gateway address is fixed for the process lifetime
	Bound
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case Unbound:
		return "unbound"
	case AwaitingSpecificMatch:
		return "awaiting-specific-match"
	case Bound:
		return "bound"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ErrAlreadyBound is returned by Bind once the session is bound
var ErrAlreadyBound = errors.New("session already bound")

// ErrSysVarsLoaded is returned by MarkSysVarsLoaded after the first call
var ErrSysVarsLoaded = errors.New("system variables already loaded")

// ErrNotBound is returned by MarkSysVarsLoaded before the session is bound
var ErrNotBound = errors.New("session not bound")

// State is the session state machine
type State struct {
	phase         Phase
	boundIP       string
	boundMAC      string
	sysVarsLoaded bool
}

// NewState returns the initial state for target
func NewState(target Target) *State {
	s := &State{phase: Unbound}
	if target.Mode == ModeMAC || target.Mode == ModeIP {
		s.phase = AwaitingSpecificMatch
	}
	return s
}

// Phase returns the current phase
func (s *State) Phase() Phase { return s.phase }

// IsBound reports whether the session is bound
func (s *State) IsBound() bool { return s.phase == Bound }

// BoundIP returns the gateway IP, empty until bound
func (s *State) BoundIP() string { return s.boundIP }

// BoundMAC returns the gateway MAC, empty until bound
func (s *State) BoundMAC() string { return s.boundMAC }

// SysVarsLoaded reports whether the one-time bulk load was started
func (s *State) SysVarsLoaded() bool { return s.sysVarsLoaded }

// Bind fixes the session to the gateway at ip/mac. Match never returns Bind
// for a bound session, so ErrAlreadyBound signals a caller bug.
func (s *State) Bind(ip, mac string) error {
	if s.phase == Bound {
		return ErrAlreadyBound
	}
	s.boundIP = ip
	s.boundMAC = mac
	s.phase = Bound
	return nil
}

// MarkSysVarsLoaded claims the single bulk system variable load. It succeeds
// once per process, and only while bound.
func (s *State) MarkSysVarsLoaded() error {
	if s.phase != Bound {
		return ErrNotBound
	}
	if s.sysVarsLoaded {
		return ErrSysVarsLoaded
	}
	s.sysVarsLoaded = true
	return nil
}

// Snapshot is a copy of the state safe to hand to other goroutines
type Snapshot struct {
	Phase         Phase
	BoundIP       string
	BoundMAC      string
	SysVarsLoaded bool
}

// Snapshot returns a copy of the current state
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Phase:         s.phase,
		BoundIP:       s.boundIP,
		BoundMAC:      s.boundMAC,
		SysVarsLoaded: s.sysVarsLoaded,
	}
}
