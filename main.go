package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appOrder "github.com/HacAtac/Ecom-Order-Microservice/internal/application/order"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/config"
	domainOrder "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domainPayment "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/client"
	kafkarelay "github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/kafka"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/memory"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/observability/oteltrace"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/observability/prometrics"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/observability/telemetry"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/observability/zaplogger"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/outbox"
	paymentsim "github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/payment"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/infrastructure/postgres"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
	httppresentation "github.com/HacAtac/Ecom-Order-Microservice/internal/presentation/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	systemTraceID = "system"
	systemSpanID  = "system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "order-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	baseLogger, err := zaplogger.New(cfg.LogLevel,
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger.Zap())

	systemLogger := baseLogger.With(
		observability.F("trace_id", systemTraceID),
		observability.F("span_id", systemSpanID),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := oteltrace.Setup(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}

	counters, histograms := prometrics.Standard(prometrics.New("", "", nil))
	tel := telemetry.New(oteltrace.New(cfg.ServiceName), baseLogger, counters, histograms)

	orders, closeStore, err := openOrderStore(ctx, cfg, systemLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	inventory, products, err := productCollaborators(cfg, systemLogger)
	if err != nil {
		return err
	}
	payments := paymentCollaborator(cfg, baseLogger, systemLogger)

	bus := outbox.NewBus(tel)
	appOrder.NewOutcomeWorker(bus, tel).Start()

	var relay *kafkarelay.Relay
	if brokers := kafkarelay.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		relay = kafkarelay.NewRelay(kafkarelay.NewWriter(brokers, cfg.KafkaTopic), bus, tel)
		relay.Start()
		systemLogger.Info("kafka_relay_enabled",
			observability.F("brokers", cfg.KafkaBrokers),
			observability.F("topic", cfg.KafkaTopic),
		)
	}
	bus.Start(ctx)

	deps := appOrder.Deps{
		Orders:    orders,
		Inventory: inventory,
		Payments:  payments,
		Products:  products,
		Publisher: bus,
	}
	handler := httppresentation.NewHandler(
		appOrder.NewPlaceOrderUseCase(deps, tel),
		appOrder.NewGetOrderDetailsUseCase(deps, tel),
		promhttp.Handler(),
		tel,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start", observability.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			systemLogger.Error("http_server_error", observability.F("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", observability.F("error", err))
	} else {
		systemLogger.Info("http_server_stopped")
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		systemLogger.Warn("event_bus_stop_error", observability.F("error", err))
	}
	if relay != nil {
		if err := relay.Close(); err != nil {
			systemLogger.Warn("kafka_relay_close_error", observability.F("error", err))
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		systemLogger.Warn("tracing_shutdown_error", observability.F("error", err))
	}
	return nil
}

func openOrderStore(ctx context.Context, cfg config.Config, logger observability.Logger) (domainOrder.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("order_store_selected", observability.F("store", "memory"))
		return memory.NewOrderRepository(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	logger.Info("order_store_selected", observability.F("store", "postgres"))
	return postgres.NewOrderRepository(pool), pool.Close, nil
}

func productCollaborators(cfg config.Config, logger observability.Logger) (appOrder.InventoryPort, appOrder.ProductCatalog, error) {
	if !cfg.StandaloneInventory() {
		logger.Info("product_service_selected", observability.F("url", cfg.ProductServiceURL))
		return client.NewInventoryClient(cfg.ProductServiceURL, cfg.ClientTimeout, nil),
			client.NewProductClient(cfg.ProductServiceURL, cfg.ClientTimeout, nil), nil
	}

	seed, err := memory.ParseCatalogSeed(cfg.SeedProducts)
	if err != nil {
		return nil, nil, fmt.Errorf("SEED_PRODUCTS: %w", err)
	}
	catalog, err := memory.NewCatalog(seed...)
	if err != nil {
		return nil, nil, fmt.Errorf("SEED_PRODUCTS: %w", err)
	}
	logger.Info("product_service_selected",
		observability.F("url", "in-process"),
		observability.F("products", len(seed)),
	)
	return catalog, catalog, nil
}

func paymentCollaborator(cfg config.Config, base, logger observability.Logger) domainPayment.Processor {
	if !cfg.StandalonePayment() {
		logger.Info("payment_service_selected", observability.F("url", cfg.PaymentServiceURL))
		return client.NewPaymentClient(cfg.PaymentServiceURL, cfg.ClientTimeout, nil)
	}
	logger.Info("payment_service_selected",
		observability.F("url", "simulated"),
		observability.F("success_rate", cfg.SimulatedPaymentSuccessRate),
	)
	return paymentsim.NewSimulator(cfg.SimulatedPaymentSuccessRate, base)
}
