// graystore - retained-message tree store
//
// graystore mirrors every retained message on the broker into an
// in-memory topic tree, serves tree queries over HTTP, persists the
// tree to SQLite across restarts, and optionally records topic changes
// to InfluxDB.
//
// It is the server-side companion to the connect client package: the
// client's Query and UnpublishRecursively operations talk to the HTTP
// endpoint this daemon exposes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-connect/connect"
	"github.com/nerrad567/gray-logic-connect/internal/history"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-connect/internal/treestore"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/graystore.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting graystore",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Build the in-memory retained tree
	store := treestore.New(log)

	// Restore the tree from the last snapshot
	var snap *treestore.Snapshot
	if cfg.Store.SnapshotPath != "" {
		snap, err = treestore.OpenSnapshot(cfg.Store.SnapshotPath)
		if err != nil {
			return fmt.Errorf("opening snapshot: %w", err)
		}
		defer func() {
			log.Info("closing snapshot database")
			if closeErr := snap.Close(); closeErr != nil {
				log.Error("error closing snapshot database", "error", closeErr)
			}
		}()

		retained, loadErr := snap.Load(ctx)
		if loadErr != nil {
			return fmt.Errorf("loading snapshot: %w", loadErr)
		}
		store.Import(retained)
		log.Info("snapshot restored",
			"path", cfg.Store.SnapshotPath,
			"topics", store.Len(),
		)
	} else {
		log.Info("snapshots disabled")
	}

	// Connect to the broker
	opts := connect.NewOptions()
	opts.ClientID = cfg.MQTT.Broker.ClientID
	opts.Username = cfg.MQTT.Auth.Username
	opts.Password = cfg.MQTT.Auth.Password
	opts.Logger = log

	client, err := connect.Connect(cfg.MQTT.BrokerURI(), "", opts)
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	defer func() {
		log.Info("disconnecting from broker")
		client.Disconnect()
	}()
	log.Info("broker connected",
		"broker", cfg.MQTT.BrokerURI(),
		"client_id", opts.ClientID,
	)

	client.SetOnConnect(func() {
		log.Info("broker reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("broker connection lost", "error", err)
	})

	// Mirror retained traffic into the tree
	if err := store.Attach(client); err != nil {
		return fmt.Errorf("attaching store to broker: %w", err)
	}

	// Record topic changes to InfluxDB (optional)
	if cfg.History.Enabled {
		recorder, connErr := history.Connect(cfg.History)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := recorder.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		recorder.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		if attachErr := recorder.Attach(client); attachErr != nil {
			return fmt.Errorf("attaching history recorder: %w", attachErr)
		}
		log.Info("history recording enabled",
			"url", cfg.History.URL,
			"org", cfg.History.Org,
			"bucket", cfg.History.Bucket,
		)
	} else {
		log.Info("history recording disabled")
	}

	// Serve tree queries over HTTP
	server := treestore.NewServer(cfg.HTTP, store, log)
	server.Start(ctx)
	defer func() {
		log.Info("stopping query server")
		server.Close()
	}()
	log.Info("query server listening",
		"host", cfg.HTTP.Host,
		"port", cfg.HTTP.Port,
	)

	// Persist the tree periodically. The wait defer runs before the
	// snapshot Close defer, so the final save completes first.
	if snap != nil {
		interval := time.Duration(cfg.Store.SnapshotInterval) * time.Second
		snapDone := make(chan struct{})
		go func() {
			defer close(snapDone)
			snap.Run(ctx, store, interval, log)
		}()
		defer func() { <-snapDone }()
	}

	if err := healthCheck(ctx, client); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Query server
	// 2. InfluxDB (if enabled)
	// 3. Broker connection
	// 4. Snapshot database (after a final save in Run)

	log.Info("graystore stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYSTORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYSTORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the broker connection is healthy.
func healthCheck(ctx context.Context, client *connect.Client) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(checkCtx); err != nil {
		if errors.Is(err, connect.ErrNotConnected) {
			return fmt.Errorf("broker: %w", err)
		}
		return err
	}
	return nil
}
