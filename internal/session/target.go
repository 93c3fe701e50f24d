package session

import "fmt"

// Mode selects how the session gateway is identified
type Mode int

const (
	// ModeNone never binds. It is the zero value and stands for a missing
	// detection method in the configuration.
	ModeNone Mode = iota
	// ModeAny binds to whichever gateway replies first
	ModeAny
	// ModeMAC binds to the gateway announcing a given MAC address
	ModeMAC
	// ModeIP binds to the gateway announcing a given IP address
	ModeIP
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeAny:
		return "any"
	case ModeMAC:
		return "mac"
	case ModeIP:
		return "ip"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Target is the configured identity of the session gateway. It is set once at
// startup and never changes.
type Target struct {
	Mode Mode
	MAC  string // Only meaningful for ModeMAC
	IP   string // Only meaningful for ModeIP
}

// AnyTarget matches any gateway
func AnyTarget() Target {
	return Target{Mode: ModeAny}
}

// ByMAC matches the gateway announcing mac
func ByMAC(mac string) Target {
	return Target{Mode: ModeMAC, MAC: mac}
}

// ByIP matches the gateway announcing ip
func ByIP(ip string) Target {
	return Target{Mode: ModeIP, IP: ip}
}

// String returns a human-readable representation of the target
func (t Target) String() string {
	switch t.Mode {
	case ModeMAC:
		return "mac " + t.MAC
	case ModeIP:
		return "ip " + t.IP
	default:
		return t.Mode.String()
	}
}
