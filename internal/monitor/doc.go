// Package monitor shows the live state feed of a running bridge.
//
// On a terminal it runs a Bubble Tea screen: connection status, every state
// key with its latest value, and the last received IR code highlighted. When
// stdout is not a terminal it prints one line per update instead.
//
// The feed is not reconnected. When it closes, the screen shows why and
// waits for q.
package monitor
