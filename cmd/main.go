package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/spotterlabs/beacon/internal/catalog"
	"github.com/spotterlabs/beacon/internal/config"
	"github.com/spotterlabs/beacon/internal/engine"
	"github.com/spotterlabs/beacon/internal/geocode"
	"github.com/spotterlabs/beacon/internal/ledger"
	"github.com/spotterlabs/beacon/internal/metrics"
	"github.com/spotterlabs/beacon/internal/models"
	"github.com/spotterlabs/beacon/internal/notify"
	"github.com/spotterlabs/beacon/internal/position"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection for the notified-set ledger.
	dtb, err := ledger.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	notifiedSet := ledger.NewLedger(dtb, ledger.DefaultNamespace, logger)
	if err = notifiedSet.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure ledger schema: %v", err)
	}

	// Optional address enrichment; candidates without coordinates stay
	// excluded from evaluation when no provider is configured.
	var geoProvider geocode.Provider
	if cfg.GeocoderType != "" {
		geoProvider, err = geocode.NewProvider(geocode.ProviderConfig{
			Type:   geocode.ProviderType(cfg.GeocoderType),
			APIKey: cfg.GeocoderKey,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("Failed to create geocoding provider: %v", err)
		}
		logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.GeocoderType)
	}

	// Catalog client and cache, with enrichment between fetch and swap.
	client := catalog.NewClient(cfg.CatalogURL, logger)
	resolver := geocode.NewResolver(geoProvider, logger)
	cache := catalog.NewCache(geocode.NewEnrichingFetcher(client, resolver), logger)

	// Alert sink: AMQP in shared environments, plain logging locally.
	// Either way emission is wrapped to be fire-and-forget.
	var sink notify.Sink
	if cfg.Env == envLocal {
		sink = notify.NewLogSink(logger)
	} else {
		conn, connErr := amqp.Dial(cfg.AMQPURL)
		if connErr != nil {
			log.Fatalf("Failed to connect to AMQP broker: %v", connErr)
		}
		defer conn.Close()

		sink, err = notify.NewAMQPSink(conn)
		if err != nil {
			log.Fatalf("Failed to create AMQP sink: %v", err)
		}
	}
	asyncSink := notify.NewAsync(sink, func(cmd models.AlertCommand, deliveryErr error) {
		appMetrics.DeliveryErrors.Inc()
		logger.ErrorContext(ctx, "Alert delivery failed", "link", cmd.Payload, "error", deliveryErr)
	})

	scheduler := engine.NewScheduler(
		logger, notifiedSet, asyncSink, appMetrics, engine.Policy(cfg.Policy), cfg.NotifyInterval,
	)

	eng := engine.NewEngine(
		logger, cache, client, notifiedSet, scheduler, appMetrics,
		cfg.RefreshInterval, cfg.ProximityThreshold, cfg.MovementThreshold,
	)

	// Subscribe to the host position stream.
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientID)
	mqttClient := mqtt.NewClient(opts)
	if token := mqttClient.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", token.Error())
	}
	defer mqttClient.Disconnect(250)

	subscriber := position.NewSubscriber(mqttClient, cfg.MQTT.Topic, eng, logger)
	if err = subscriber.Start(); err != nil {
		log.Fatalf("Failed to subscribe to position topic: %v", err)
	}

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, dtb, cfg.Port)

	go eng.Run(ctx)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Stopping simply unsubscribes; in-flight work completes and is discarded.
	if err = subscriber.Stop(); err != nil {
		logger.ErrorContext(ctx, "Failed to unsubscribe from position topic", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - dtb: A pgxpool connector for database methods (ping)
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	port int,
) {
	http.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := dtb.Ping(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      http.DefaultServeMux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
