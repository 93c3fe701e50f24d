// Package wire implements the AIO gateway's two ad-hoc wire formats.
//
// This package is pure: it parses and formats payloads and holds no state.
//
// # Discovery
//
// The bridge broadcasts the probe "GET\n" to UDP port 1901. Gateways answer
// with newline-separated KEY:VALUE lines:
//
//	IP:10.0.0.5
//	MAC:AA:BB:CC:DD:EE:FF
//	NAME:AIO GATEWAY
//
// Only replies carrying the exact line NAME:AIO GATEWAY are gateways. Anything
// else parses to ErrNotGateway, a normal negative result.
//
// # Events
//
// Gateways push events to UDP port 1902 as the literal prefix {XC_EVT}
// followed by a JSON object:
//
//	{XC_EVT}{"type":"IR","data":"abc123"}
//	{XC_EVT}{"type":"SV","data":"I:07:00000007"}
//
// SV data has the fixed layout <Kind>:<id>:<value> with Kind one of I, B, S
// or F and a two character variable id.
//
// Float events are known to carry characters that break JSON encoding on the
// gateway side, so in practice they fail to decode before reaching a router.
// They are still decoded here when they arrive intact.
//
// # HTTP
//
// Commands and the bulk system variable query are plain GET requests. A
// successful answer starts with {XC_SUC}; the bulk query appends a JSON array:
//
//	{XC_SUC}[{"type":"INT","adr":"02","state":"00000007"}]
package wire
