package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/aiobridge/internal/config"
	"github.com/muurk/aiobridge/internal/discovery"
	"github.com/muurk/aiobridge/internal/gateway"
	"github.com/muurk/aiobridge/internal/monitor"
	"github.com/muurk/aiobridge/internal/store"
	"github.com/muurk/aiobridge/internal/ui"
)

// Command flags
var (
	scanTimeout time.Duration
	gatewayIP   string
	feedURL     string
)

func init() {
	discoverCmd.Flags().DurationVar(&scanTimeout, "timeout", discovery.DefaultScanTimeout, "How long to wait for replies")

	sendCmd.Flags().StringVar(&gatewayIP, "ip", "", "Gateway IP address (required)")
	_ = sendCmd.MarkFlagRequired("ip")
	statesCmd.Flags().StringVar(&gatewayIP, "ip", "", "Gateway IP address (required)")
	_ = statesCmd.MarkFlagRequired("ip")

	monitorCmd.Flags().StringVar(&feedURL, "url", "", "Feed URL, e.g. ws://host:8089/ws (default: find over mDNS)")

	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)

	rootCmd.AddCommand(discoverCmd, sendCmd, statesCmd, monitorCmd, configCmd)
}

// discoverCmd sends one probe and lists the gateways that answer
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find AIO gateways on the local network",
	Long: `Send one discovery probe to UDP port 1901 and list every AIO gateway that
answers within the timeout. Nothing is bound or published.`,
	Example: `  # Scan for 3 seconds (default)
  aio-bridge discover

  # Longer scan
  aio-bridge discover --timeout 10s`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Gateway Discovery", "aio-bridge discover", ui.Details{
		{Key: "Broadcast", Value: fmt.Sprintf("%s:%d", cfg.Network.BroadcastAddress, cfg.Network.DiscoveryPort)},
		{Key: "Timeout", Value: scanTimeout.String()},
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	replies, err := discovery.Scan(ctx, discovery.ScanOptions{
		Timeout:   scanTimeout,
		Broadcast: cfg.Network.BroadcastAddress,
		Port:      cfg.Network.DiscoveryPort,
	})
	if err != nil {
		p.PrintError("Discovery failed", err, nil)
		return err
	}

	if len(replies) == 0 {
		p.PrintError("No gateways found", nil, []string{
			"Ensure the gateway is powered on and on the same network",
			"Check that UDP broadcast is not filtered between you and the gateway",
			"Try increasing --timeout",
		})
		return nil
	}

	rows := make([][]string, 0, len(replies))
	for _, r := range replies {
		rows = append(rows, []string{r.IP, r.MAC, r.DeviceName})
	}
	p.PrintTable([]string{"IP", "MAC", "NAME"}, rows)
	p.Newline()
	p.PrintSuccess(fmt.Sprintf("%d gateway(s) found", len(replies)), ui.Details{
		{Key: "Bind by MAC", Value: "aio-bridge config: detection.find_by_mac + detection.mac"},
	})
	return nil
}

// sendCmd relays one IR code
var sendCmd = &cobra.Command{
	Use:   "send <code>",
	Short: "Send one IR code to a gateway",
	Long: `Relay one IR code through the gateway's HTTP command API, exactly as the
bridge does for writes to sendIrData.`,
	Example: `  aio-bridge send --ip 192.168.1.50 0123456789ABCDEF`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	client := gateway.NewClient()
	client.SetTimeout(oneShotTimeout(cfg))

	p := ui.NewPrinter(cmd.OutOrStdout())
	if err := client.SendCode(cmd.Context(), gatewayIP, args[0]); err != nil {
		p.PrintError("Command failed", err, troubleshoot(err))
		return err
	}
	p.PrintSuccess("Command accepted", ui.Details{
		{Key: "Gateway", Value: gatewayIP},
		{Key: "Code", Value: args[0]},
	})
	return nil
}

// statesCmd reads every system variable once
var statesCmd = &cobra.Command{
	Use:     "states",
	Short:   "Read the system variables of a gateway",
	Example: `  aio-bridge states --ip 192.168.1.50`,
	RunE:    runStates,
}

func runStates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	client := gateway.NewClient()
	client.SetTimeout(oneShotTimeout(cfg))

	p := ui.NewPrinter(cmd.OutOrStdout())
	records, err := client.GetStates(cmd.Context(), gatewayIP)
	if err != nil {
		p.PrintError("Bulk read failed", err, troubleshoot(err))
		return err
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{store.SysVarKey(r.Adr), r.State})
	}
	p.PrintTable([]string{"KEY", "VALUE"}, rows)
	p.Newline()
	p.Println(ui.MutedStyle.Render(strconv.Itoa(len(records)) + " system variables"))
	return nil
}

// oneShotTimeout keeps one-shot commands from hanging on a silent gateway
func oneShotTimeout(cfg *config.Config) time.Duration {
	if cfg.Network.HTTPTimeout > 0 {
		return cfg.Network.HTTPTimeout
	}
	return 10 * time.Second
}

// troubleshoot returns tips for a gateway error
func troubleshoot(err error) []string {
	switch {
	case gateway.IsRejection(err):
		return []string{"The gateway answered but refused the request", "Check the code format"}
	case gateway.IsDecodeError(err):
		return []string{"The gateway answer could not be parsed", "Run with --log-level debug to see it"}
	default:
		return []string{"Check the gateway IP (aio-bridge discover)", "Ensure port 80 on the gateway is reachable"}
	}
}

// monitorCmd shows the live state feed
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the live state feed of a running bridge",
	Long: `Connect to the live state feed of a running bridge and show every state as
it changes. Without --url the feed is located over mDNS.`,
	Example: `  aio-bridge monitor
  aio-bridge monitor --url ws://192.168.1.10:8089/ws`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(""); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	url := feedURL
	if url == "" {
		feed, err := discovery.NewFeedBrowser().FindFeed(ctx)
		if err != nil {
			return fmt.Errorf("%w (pass --url to skip mDNS)", err)
		}
		url = feed.URL()
	}
	return monitor.Run(ctx, url, cmd.OutOrStdout())
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateDefaultConfig(configPath)
		if err != nil {
			return err
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Configuration written", ui.Details{{Key: "Path", Value: path}})
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("")
		if err != nil {
			return err
		}
		cfg.MQTT.Password = redact(cfg.MQTT.Password)
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
