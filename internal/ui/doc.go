// Package ui provides terminal output components for the aio-bridge CLI.
//
// The one-shot commands (discover, send, states, config) print through a
// Printer: a command header, then success or error boxes and tables styled
// with Lipgloss. Output follows a "print once and exit" pattern; the only
// interactive screen is the monitor, which builds on the same styles.
//
// # Usage Pattern
//
//	p := ui.NewPrinter(nil)
//	p.PrintHeader("Gateway Discovery", "aio-bridge discover", ui.Details{
//	    {Key: "Timeout", Value: "3s"},
//	})
//	p.PrintTable([]string{"IP", "MAC"}, rows)
//	p.PrintSuccess("2 gateways found", nil)
//
// # Logging Integration
//
// This package expects logging to be controlled via the AIOBRIDGE_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
//
// # Non-terminal Output
//
// When stdout is not a terminal the Printer falls back to the minimum width,
// and IsTerminal lets callers choose plain line output instead.
package ui
