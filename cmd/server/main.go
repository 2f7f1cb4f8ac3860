package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/fleetpulse/telemetry/internal/channel/kafka"
	"github.com/fleetpulse/telemetry/internal/channel/memory"
	httpdelivery "github.com/fleetpulse/telemetry/internal/delivery/http"
	"github.com/fleetpulse/telemetry/internal/domain"
	"github.com/fleetpulse/telemetry/internal/export"
	"github.com/fleetpulse/telemetry/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Configuration
	cfg := loadConfig()

	// Message channel: Kafka when brokers are configured, in-process otherwise
	var publisher domain.TelemetryPublisher
	var consumer domain.TelemetryConsumer
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		publisher = kafka.NewPublisher(brokers, cfg.KafkaTopic)
		consumer = kafka.NewConsumer(brokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		log.Printf("Using Kafka channel: brokers=%s topic=%s", cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		ch := memory.New(256)
		publisher = ch
		consumer = ch
		log.Println("No Kafka brokers configured, using in-memory channel")
	}
	defer publisher.Close()
	defer consumer.Close()

	// Dependency Injection: Services
	registry := service.NewBroadcastRegistry()
	gateway := service.NewInferenceGateway(cfg.MLServiceURL, cfg.InferenceTimeout)

	var exporter *export.XLSXExporter
	var sink service.ExportSink
	if cfg.ExportEnabled {
		exporter = export.NewXLSXExporter(cfg.ExportPath, cfg.ExportBatchSize)
		sink = exporter
		log.Printf("Batch export enabled: path=%s batch=%d", cfg.ExportPath, cfg.ExportBatchSize)
	}

	correlator := service.NewEnrichmentCorrelator(gateway, registry, sink)
	generator := service.NewTelemetryGenerator(cfg.VehicleIDs, publisher)

	// Pipeline goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := correlator.Run(ctx, consumer); err != nil {
			log.Printf("Correlator stopped: %v", err)
		}
	}()
	go generator.Run(ctx, cfg.TickInterval)
	log.Printf("Simulating %d vehicles every %s", len(cfg.VehicleIDs), cfg.TickInterval)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "FleetPulse Telemetry v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	handler := httpdelivery.NewHandler(registry, gateway, cfg.VehicleIDs)
	httpdelivery.SetupRoutes(app, handler)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if exporter != nil {
		if err := exporter.Flush(); err != nil {
			log.Printf("Export flush failed: %v", err)
		}
	}
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully")
}

type Config struct {
	Port             string
	KafkaBrokers     string
	KafkaTopic       string
	KafkaGroupID     string
	MLServiceURL     string
	InferenceTimeout time.Duration
	TickInterval     time.Duration
	VehicleIDs       []string
	ExportEnabled    bool
	ExportPath       string
	ExportBatchSize  int
	Env              string
}

func loadConfig() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "vehicle-telemetry"),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "vehicle-processor-group"),
		MLServiceURL:     getEnv("ML_SERVICE_URL", "http://localhost:9000"),
		InferenceTimeout: getDurationEnv("INFERENCE_TIMEOUT", 10*time.Second),
		TickInterval:     getDurationEnv("TICK_INTERVAL", 4*time.Second),
		VehicleIDs:       getListEnv("VEHICLE_IDS", []string{"CAR-001", "CAR-002", "CAR-003", "CAR-004"}),
		ExportEnabled:    getEnv("EXPORT_ENABLED", "false") == "true",
		ExportPath:       getEnv("EXPORT_PATH", "vehicle_data.xlsx"),
		ExportBatchSize:  getIntEnv("EXPORT_BATCH_SIZE", export.DefaultBatchSize),
		Env:              getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
