// Package server implements the live state feed of the bridge.
//
// The feed is a small HTTP server:
//   - GET /ws upgrades to a WebSocket and streams every published state as a
//     JSON message {"key", "value", "time"}. A new client first receives the
//     current value of every key.
//   - GET /state returns the current values as one JSON object.
//
// Hub implements store.Sink, so it is attached to the state store with
// store.NewTee and sees exactly what the store sees. When advertising is
// enabled the feed registers "_aiobridge._tcp" over mDNS.
package server
