// Aio-bridge connects an AIO home-automation gateway to MQTT.
//
// It discovers the gateway over UDP broadcast, publishes the infrared codes
// and system variables the gateway pushes, and relays commands written to
// the sendIrData state back to the gateway over HTTP.
//
// Usage:
//
//	aio-bridge [command] [flags]
//
// See 'aio-bridge --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/aiobridge/internal/config"
	"github.com/muurk/aiobridge/internal/logging"
	"github.com/muurk/aiobridge/internal/version"
)

// Global flags
var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "aio-bridge",
	Short: "AIO Gateway Bridge",
	Long: `A bridge between an AIO home-automation gateway and an MQTT broker.

The bridge finds the gateway with a UDP broadcast, listens for the events it
pushes on UDP port 1902, and relays IR codes written to sendIrData back to the
gateway's HTTP command API.

Run 'aio-bridge config init' to write a default configuration file.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: OS config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the configuration file and sets up logging. fallback is
// the log level used when neither the flag, AIOBRIDGE_LOG_LEVEL nor the file
// set one; empty keeps logging silent.
func loadConfig(fallback string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := logLevel
	if level == "" {
		level = os.Getenv(logging.LogLevelEnvVar)
	}
	if level == "" && fallback != "" {
		level = cfg.LogLevel
		if level == "" {
			level = fallback
		}
	}
	if err := logging.Initialize(level); err != nil {
		return nil, err
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aio-bridge %s\n", version.Full())
		fmt.Printf("built with %s\n", version.Platform())
	},
}
