package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"multi-tenant-booking/internal/api"
	"multi-tenant-booking/internal/config"
	"multi-tenant-booking/internal/consumer"
	"multi-tenant-booking/internal/messaging"
	"multi-tenant-booking/internal/metrics"
	"multi-tenant-booking/internal/notify"
	"multi-tenant-booking/internal/service"
	"multi-tenant-booking/internal/session"
	"multi-tenant-booking/internal/storage"
	"multi-tenant-booking/internal/tenant"
)

// @title Multi-Tenant Booking API
// @version 1.0
// @description Appointment booking API scoped by request subdomain
// @BasePath /
// @schemes http
func main() {
	configPath := flag.String("config", "config.yaml", "path to optional YAML config")
	flag.Parse()

	// Init Metrics
	metrics.Init()

	// Load Configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Configuration loaded (tenancy=%s, notify=%s)", cfg.Tenancy.Mode, cfg.Notify.Backend)

	flash, err := session.NewFlasher(cfg.Session.Secret)
	if err != nil {
		log.Fatalf("Failed to init sessions: %v", err)
	}

	// Init PostgreSQL
	db, err := storage.NewStorage(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()
	log.Println("PostgreSQL connected")

	if cfg.Database.MigrateOnStart {
		if err := db.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
	}

	// Notification channel: the hub serves local dashboards, the relay (if any)
	// carries events between instances.
	hub := notify.NewHub(cfg.Notify.Buffer)
	var notifier service.Notifier = hub

	switch cfg.Notify.Backend {
	case config.BackendRabbitMQ:
		rabbitClient, err := messaging.NewRabbitClient(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rabbitClient.Close()

		relay, err := consumer.StartConsumer(rabbitClient.GetConnection(), cfg.RabbitMQ.Exchange, hub)
		if err != nil {
			log.Fatalf("Failed to start relay consumer: %v", err)
		}
		defer relay.Stop()

		notifier = rabbitClient
		log.Println("RabbitMQ connected")

	case config.BackendNATS:
		natsRelay, err := messaging.NewNatsRelay(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsRelay.Close()

		if err := natsRelay.Start(hub); err != nil {
			log.Fatalf("Failed to start NATS relay: %v", err)
		}

		notifier = natsRelay
		log.Println("NATS connected")
	}

	var resolver *tenant.Resolver
	if cfg.MultiTenant() {
		resolver = tenant.NewResolver(db)
	}
	svc := service.NewBookingService(db, notifier, cfg.MultiTenant())

	// Init API
	apiHandler := api.NewAPI(svc, db, resolver, hub, flash)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           apiHandler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown Setup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("🚀 Starting API server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done() // Wait for interrupt signal
	log.Println("Shutdown initiated...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	log.Println("Graceful shutdown complete")
}
