package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	cartshttp "github.com/dkovacevic/storefront/internal/cart/adapters/http"
	cartspostgres "github.com/dkovacevic/storefront/internal/cart/adapters/postgres"
	cartsapp "github.com/dkovacevic/storefront/internal/cart/app"
	cataloghttp "github.com/dkovacevic/storefront/internal/catalog/adapters/http"
	catalogpostgres "github.com/dkovacevic/storefront/internal/catalog/adapters/postgres"
	catalogapp "github.com/dkovacevic/storefront/internal/catalog/app"
	"github.com/dkovacevic/storefront/internal/config"
	"github.com/dkovacevic/storefront/internal/database"
	"github.com/dkovacevic/storefront/internal/events"
	"github.com/dkovacevic/storefront/internal/httpx"
	idempostgres "github.com/dkovacevic/storefront/internal/idempotency/postgres"
	"github.com/dkovacevic/storefront/internal/orders/adapters"
	ordershttp "github.com/dkovacevic/storefront/internal/orders/adapters/http"
	orderspostgres "github.com/dkovacevic/storefront/internal/orders/adapters/postgres"
	ordersapp "github.com/dkovacevic/storefront/internal/orders/app"
	ordersmetrics "github.com/dkovacevic/storefront/internal/orders/metrics"
	paymentsadapters "github.com/dkovacevic/storefront/internal/payments/adapters"
	paymentshttp "github.com/dkovacevic/storefront/internal/payments/adapters/http"
	paymentspostgres "github.com/dkovacevic/storefront/internal/payments/adapters/postgres"
	paymentsapp "github.com/dkovacevic/storefront/internal/payments/app"
	"github.com/dkovacevic/storefront/internal/payments/gateway"
	paymentsmetrics "github.com/dkovacevic/storefront/internal/payments/metrics"
	"github.com/dkovacevic/storefront/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations completed successfully")
	}

	meter := otel.Meter("github.com/dkovacevic/storefront")

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	eventMetrics, err := events.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create event metrics", "error", err)
		os.Exit(1)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}
	paymentMetrics, err := paymentsmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create payment metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := httpx.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	productRepo := catalogpostgres.NewRepository(pool)
	cartRepo := cartspostgres.NewRepository(pool)
	orderRepo := orderspostgres.NewRepository(pool)
	paymentRepo := paymentspostgres.NewRepository(pool)
	idemStore := idempostgres.NewStore(pool)

	eventBus := adapters.NewObservableEventBus(events.NewNoopBus(), eventMetrics)

	catalogService := catalogapp.NewService(productRepo, logger)
	cartService := cartsapp.NewService(cartRepo, catalogService, logger)

	ordersService := ordersapp.NewService(
		adapters.NewObservableRepository(orderRepo, dbMetrics),
		cartService,
		catalogService,
		eventBus,
		idemStore,
		logger,
		orderMetrics,
	)

	sim := gateway.NewSimulator(cfg.Gateway.ProcessingDelay, cfg.Gateway.SuccessRate, logger)
	paymentEventBus := paymentsadapters.NewObservableEventBus(events.NewNoopBus(), eventMetrics)
	paymentsService := paymentsapp.NewService(paymentRepo, ordersService, sim, paymentEventBus, logger, paymentMetrics)
	sim.Attach(paymentsService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.HandleFunc(cfg.HTTP.MetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics are exported over OTLP\n"))
	})

	cataloghttp.NewHandler(catalogService).Register(mux)
	cartshttp.NewHandler(cartService).Register(mux)
	ordershttp.NewHandler(ordersService).Register(mux)
	paymentshttp.NewHandler(paymentsService).Register(mux)

	handler := httpx.WithRecovery(httpx.WithLogging(httpx.WithMetrics(mux, httpMetrics), logger), logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}

	// Let in-flight gateway callbacks settle before the process exits.
	sim.Wait()
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
