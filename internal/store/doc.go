// Package store is the bridge's view of the external key/value state store.
//
// The bridge publishes gateway state under a small set of keys and listens for
// external writes to sendIrData, which trigger outbound IR commands:
//
//	info.connection   bool    gateway bound
//	receivedIrData    string  last IR code received
//	sendIrData        string  write to send an IR code
//	id<adr>           string  system variable <adr>
//
// Two implementations exist. Memory keeps everything in process and is used by
// tests and by runs without a broker. MQTT maps keys to retained topics under
// a prefix, with writes arriving on <prefix>/<key>/set.
//
// Tee fans every SetState out to additional sinks such as the live feed.
package store
