// Powerline Core - legacy powerline home-automation daemon
//
// This is the main entry point for the powerline daemon. It owns the
// serial transceiver, maintains the in-memory device-state engine, and
// exposes the system over MQTT:
//   - powerline/command/{address} accepts commands
//   - powerline/state/{address} carries retained device state
//   - powerline/trigger/{label} announces whole-house broadcasts
//
// State changes are additionally journalled to SQLite (for restart
// restore and audit) and optionally to InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/powerline-core/migrations"

	"github.com/nerrad567/powerline-core/internal/bridge"
	"github.com/nerrad567/powerline-core/internal/catalog"
	"github.com/nerrad567/powerline-core/internal/engine"
	"github.com/nerrad567/powerline-core/internal/history"
	"github.com/nerrad567/powerline-core/internal/infrastructure/config"
	"github.com/nerrad567/powerline-core/internal/infrastructure/database"
	"github.com/nerrad567/powerline-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/powerline-core/internal/infrastructure/logging"
	"github.com/nerrad567/powerline-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/powerline-core/internal/transceiver"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// pruneInterval is how often old history rows are removed.
const pruneInterval = 24 * time.Hour

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
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
	log.Info("starting powerline core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	store := history.NewStore(db.DB)

	// Load device/scene catalog
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	log.Info("catalog loaded",
		"path", cfg.Catalog.Path,
		"devices", len(cat.Devices()),
		"scenes", len(cat.Scenes()),
	)

	// Open the serial transceiver (optional: the daemon can run as a
	// bus-only reflector without hardware attached)
	var trans *transceiver.Transceiver
	if cfg.Transceiver.Enabled {
		trans, err = transceiver.Open(cfg.Transceiver, cfg.GetSerialReadTimeout(), nil, log)
		if err != nil {
			return fmt.Errorf("opening transceiver: %w", err)
		}
		defer func() {
			log.Info("closing transceiver")
			if closeErr := trans.Close(); closeErr != nil {
				log.Error("error closing transceiver", "error", closeErr)
			}
		}()
		log.Info("transceiver opened", "device", cfg.Transceiver.Device)
	} else {
		log.Info("transceiver disabled")
	}

	// Build the device-state engine. A nil transport makes every send
	// report connectionNotOpen, which is exactly right when the
	// hardware is disabled.
	var transport engine.Transport
	if trans != nil {
		transport = trans
	}
	eng := engine.New(cat, transport, log)

	// Restore last-known states from the history journal
	states, err := store.LatestStates(ctx)
	if err != nil {
		return fmt.Errorf("restoring states: %w", err)
	}
	for addr, state := range states {
		eng.Restore(addr, state)
	}
	log.Info("device states restored", "devices", len(states))

	// Journal every state change
	eng.OnStateChange(func(change engine.StateChange) {
		if recordErr := store.RecordStateChange(ctx, change); recordErr != nil {
			log.Error("recording state change", "error", recordErr)
		}
	})

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		eng.OnStateChange(func(change engine.StateChange) {
			influxClient.WriteStateChange(
				change.Address.String(),
				change.Address.House.String(),
				change.State.On,
				change.State.Level,
				change.Source,
			)
		})
		eng.OnTrigger(func(trig engine.Trigger) {
			influxClient.WriteTrigger(trig.Label, trig.House.String(), trig.Command.String(), trig.Source)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to MQTT and start the bridge (optional)
	var mqttClient *mqtt.Client
	if cfg.Bridge.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		busBridge, bridgeErr := bridge.New(bridge.Options{
			Engine:       eng,
			Client:       mqttClient,
			Capabilities: cat,
			Source:       cfg.Bridge.Source,
			Logger:       log,
		})
		if bridgeErr != nil {
			return fmt.Errorf("creating bridge: %w", bridgeErr)
		}
		if startErr := busBridge.Start(); startErr != nil {
			return fmt.Errorf("starting bridge: %w", startErr)
		}
		defer func() {
			log.Info("stopping bridge")
			if stopErr := busBridge.Stop(); stopErr != nil {
				log.Error("error stopping bridge", "error", stopErr)
			}
		}()
		log.Info("bridge started")
	} else {
		log.Info("bridge disabled")
	}

	// Start the transceiver I/O loop last, once every observer that
	// wants to see inbound traffic is wired
	if trans != nil {
		trans.SetDispatcher(eng)
		trans.Start()
		log.Info("transceiver started")
	}

	// Periodic history pruning
	if cfg.Database.RetentionDays > 0 {
		go pruneLoop(ctx, store, cfg.Database.RetentionDays, log)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Bridge, then MQTT
	// 2. InfluxDB (if enabled)
	// 3. Transceiver
	// 4. Database

	log.Info("powerline core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses POWERLINE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("POWERLINE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// pruneLoop removes history rows older than the retention window, once
// at startup and then daily.
func pruneLoop(ctx context.Context, store *history.Store, retentionDays int, log *logging.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		deleted, err := store.Prune(ctx, retentionDays)
		if err != nil {
			log.Error("pruning state history", "error", err)
		} else if deleted > 0 {
			log.Info("pruned state history", "rows", deleted)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if the bridge is disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	return nil
}
