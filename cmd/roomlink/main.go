// RoomLink Core - IR Room Control Server
//
// This is the main entry point for the RoomLink Core application.
// RoomLink turns a fleet of poll-only ESP32 IR blasters into remotely
// controllable rooms:
//   - Per-device FIFO command queues with poll-based delivery
//   - Poll-derived device liveness (no heartbeats, no push channel)
//   - A taught IR command catalog with intent-based resolution
//   - Room-level dispatch for the web application
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/roomlink/roomlink-core/migrations"

	"github.com/roomlink/roomlink-core/internal/api"
	"github.com/roomlink/roomlink-core/internal/catalog"
	"github.com/roomlink/roomlink-core/internal/dispatch"
	"github.com/roomlink/roomlink-core/internal/fleet"
	"github.com/roomlink/roomlink-core/internal/infrastructure/config"
	"github.com/roomlink/roomlink-core/internal/infrastructure/database"
	"github.com/roomlink/roomlink-core/internal/infrastructure/influxdb"
	"github.com/roomlink/roomlink-core/internal/infrastructure/logging"
	"github.com/roomlink/roomlink-core/internal/infrastructure/mqtt"
	"github.com/roomlink/roomlink-core/internal/resolver"
	"github.com/roomlink/roomlink-core/internal/room"
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
	log.Info("starting RoomLink Core",
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

	// Repositories
	roomRepo := room.NewSQLiteRepository(db.DB)
	catalogRepo := catalog.NewSQLiteRepository(db.DB)
	historyRepo := fleet.NewSQLiteHistoryRepository(db.DB)

	// Fleet state: in-memory queues and liveness, rebuilt on restart.
	// Blasters poll every few seconds, so state recovers quickly.
	queue := fleet.NewManager(cfg.Fleet.QueueCapacity)
	queue.SetLogger(log.WithComponent("fleet"))
	liveness := fleet.NewTracker(time.Duration(cfg.Fleet.OnlineWindow) * time.Second)
	log.Info("fleet state initialised",
		"online_window_seconds", cfg.Fleet.OnlineWindow,
		"queue_capacity", cfg.Fleet.QueueCapacity,
	)

	// Connect to MQTT broker (optional fleet event bus)
	var (
		mqttClient *mqtt.Client
		events     dispatch.EventSink
	)
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			mqttClient.Close()
		}()
		mqttClient.SetLogger(log.WithComponent("mqtt"))
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		events = mqtt.NewEventPublisher(mqttClient, byte(cfg.MQTT.QoS), log.WithComponent("mqtt"))
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional fleet telemetry)
	var (
		influxClient *influxdb.Client
		metrics      dispatch.Metrics
	)
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
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
		metrics = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// Command dispatcher ties rooms, catalog, resolver and fleet together
	dispatcher := dispatch.New(dispatch.Deps{
		Rooms:    roomRepo,
		Catalog:  catalogRepo,
		Resolver: resolver.New(catalogRepo, log.WithComponent("resolver")),
		Queue:    queue,
		Liveness: liveness,
		History:  historyRepo,
		Events:   events,
		Metrics:  metrics,
		Logger:   log.WithComponent("dispatch"),
	})

	// Start the HTTP API
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		Fleet:      cfg.Fleet,
		Logger:     log.WithComponent("api"),
		Dispatcher: dispatcher,
		Rooms:      roomRepo,
		Catalog:    catalogRepo,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"tls", cfg.API.TLS.Enabled,
	)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("RoomLink Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ROOMLINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ROOMLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and influxClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil && !mqttClient.IsConnected() {
		return fmt.Errorf("mqtt: %w", mqtt.ErrNotConnected)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
