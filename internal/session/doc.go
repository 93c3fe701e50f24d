// Package session holds the binding between the bridge and one AIO gateway.
//
// A session starts Unbound (or AwaitingSpecificMatch when a MAC or IP target
// is configured) and moves to Bound on the first matching discovery reply.
// Bound is terminal for the lifetime of the process: there is no unbind, no
// failover and no re-evaluation of later replies.
//
//	target := session.ByMAC("AA:BB:CC:DD:EE:FF")
//	state := session.NewState(target)
//
//	if session.Match(target, reply, state) == session.Bind {
//	    state.Bind(reply.IP, reply.MAC)
//	}
//
// # Thread Safety
//
// State is not synchronized. Exactly one goroutine may own it; the bridge
// routes every discovery reply and every outbound command through a single
// owner loop.
package session
