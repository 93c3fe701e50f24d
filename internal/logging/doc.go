// Package logging provides structured logging for the AIO gateway bridge.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used throughout the bridge: plain leveled messages, raw UDP datagram
// dumps and HTTP request traces toward the gateway.
//
// # Log Levels
//
// The bridge follows a fixed level policy:
//   - Debug: datagram dumps, transport failures, commands dropped while unbound
//   - Info: startup, binding to a gateway, state changes from the store
//   - Warn: undecodable packets, non-gateway discovery replies
//   - Error: requests the gateway rejected, configuration errors
//
// Nothing logged at Error stops the bridge; every subsystem keeps listening.
//
// # Configuration
//
// Initialize logging once at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given the AIOBRIDGE_LOG_LEVEL environment variable is
// consulted; when that is empty too, logging is silent. One-shot CLI commands
// rely on this to keep their output clean.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
