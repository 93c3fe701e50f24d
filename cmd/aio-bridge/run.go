package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/aiobridge/internal/bridge"
	"github.com/muurk/aiobridge/internal/config"
	"github.com/muurk/aiobridge/internal/gateway"
	"github.com/muurk/aiobridge/internal/logging"
	"github.com/muurk/aiobridge/internal/server"
	"github.com/muurk/aiobridge/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridge",
	Long: `Run the gateway bridge until interrupted.

The bridge sends one discovery probe, binds to the configured gateway when it
answers, and publishes its states. With MQTT disabled, states are kept in
memory and are only visible through the live feed.`,
	Example: `  # Run with the default config file
  aio-bridge run

  # Bind to a specific gateway with debug logging
  AIOBRIDGE_MAC=AA:BB:CC:DD:EE:FF aio-bridge run --log-level debug

  # Expose the live feed on port 8089
  aio-bridge run --feed`,
	RunE: runBridge,
}

var enableFeed bool

func init() {
	runCmd.Flags().BoolVar(&enableFeed, "feed", false, "Serve the live state feed (overrides feed.enabled)")
	rootCmd.AddCommand(runCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("info")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target, err := cfg.Resolve()
	if err != nil {
		// Not fatal: the bridge runs but never binds
		logging.Error("Configuration error", zap.Error(err))
	}

	primary, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := primary.Close(); err != nil {
			logging.Warn("Failed to close state store", zap.Error(err))
		}
	}()

	var st store.Store = primary
	var feed *server.Server
	if enableFeed || cfg.Feed.Enabled {
		hub := server.NewHub()
		st = store.NewTee(primary, hub)
		feed = server.New(&server.Config{
			Listen:    cfg.Feed.Listen,
			Advertise: cfg.Feed.Advertise,
		}, hub)
	}

	client := gateway.NewClient()
	client.SetTimeout(cfg.Network.HTTPTimeout)

	svc := bridge.New(&bridge.Config{
		Target:           target,
		EventPort:        cfg.Network.EventPort,
		DiscoveryPort:    cfg.Network.DiscoveryPort,
		BroadcastAddress: cfg.Network.BroadcastAddress,
	}, st, client)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	if feed != nil {
		g.Go(func() error { return feed.ListenAndServe(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openStore connects the configured state store
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if !cfg.MQTT.Enabled {
		logging.Info("MQTT disabled, keeping states in memory")
		return store.NewMemory(), nil
	}

	m := store.NewMQTT(store.MQTTConfig{
		Broker:      cfg.MQTT.Broker,
		Username:    cfg.MQTT.Username,
		Password:    cfg.MQTT.Password,
		ClientID:    cfg.MQTT.ClientID,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		QoS:         cfg.MQTT.QoS,
	})
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	return m, nil
}
