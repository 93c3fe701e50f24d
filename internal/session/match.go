package session

import "github.com/muurk/aiobridge/internal/wire"

// Decision is the outcome of matching a discovery reply
type Decision int

const (
	// Ignore leaves the session unchanged
	Ignore Decision = iota
	// Bind binds the session to the replying gateway
	Bind
)

// String returns the decision name
func (d Decision) String() string {
	if d == Bind {
		return "bind"
	}
	return "ignore"
}

// Match decides whether reply identifies the session gateway. It is pure and
// always returns Ignore once the session is bound. A nil reply (not a
// gateway) is ignored.
func Match(target Target, reply *wire.DiscoveryReply, state *State) Decision {
	if reply == nil || state.Phase() == Bound {
		return Ignore
	}

	switch target.Mode {
	case ModeAny:
		return Bind
	case ModeMAC:
		if reply.MAC == target.MAC {
			return Bind
		}
	case ModeIP:
		if reply.IP == target.IP {
			return Bind
		}
	}
	return Ignore
}
