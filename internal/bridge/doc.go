// Package bridge runs the gateway session: it discovers the gateway, decodes
// the events it pushes, publishes state and relays commands back to it.
//
// # Lifecycle
//
// Service.Run binds both UDP sockets, declares the published states, resets
// info.connection to false, sends one discovery probe and then listens until
// the context is cancelled. Both sockets are closed on every exit path before
// Run returns.
//
// # Concurrency
//
// A single owner loop handles discovery replies and outbound commands, and is
// the only code that touches the session state. Events are decoded and
// published on their own goroutine. HTTP calls are fire-and-forget goroutines
// bound to the run context; Run waits for them before returning.
//
// The session binds at most once per Run. There is no re-probe and no
// re-bind: a lost gateway needs a restart.
package bridge
