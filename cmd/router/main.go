// Package main runs the swap router service: the HTTP API, the WebSocket
// event hub and the Prometheus metrics endpoint in one process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"memeswap-router/internal/api"
	"memeswap-router/internal/bootstrap"
	"memeswap-router/internal/domain"
	"memeswap-router/internal/events"
	"memeswap-router/internal/fees"
	"memeswap-router/internal/locker"
	"memeswap-router/internal/observability"
	"memeswap-router/internal/registry"
	"memeswap-router/internal/router"
	"memeswap-router/internal/storage"
	chstore "memeswap-router/internal/storage/clickhouse"
	"memeswap-router/internal/storage/memory"
	"memeswap-router/internal/storage/migrations"
	pgstore "memeswap-router/internal/storage/postgres"
	"memeswap-router/internal/venue"
)

// allStores holds all storage implementations.
type allStores struct {
	creatorStore   storage.CreatorStore
	lockStore      storage.LockStore
	bootstrapStore storage.BootstrapStore
	balanceStore   storage.BalanceStore
	eventStore     storage.SettlementEventStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	venueEndpoint := flag.String("venue-endpoint", os.Getenv("VENUE_ENDPOINT"), "Venue JSON-RPC endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	apiAddr := flag.String("api-addr", ":8080", "HTTP API listen address")
	adminAccount := flag.String("admin-account", os.Getenv("ADMIN_ACCOUNT"), "Admin account (base58)")
	treasuryAccount := flag.String("treasury-account", os.Getenv("TREASURY_ACCOUNT"), "Platform treasury account (base58)")
	depositorAccount := flag.String("depositor-account", os.Getenv("DEPOSITOR_ACCOUNT"), "Lock depositor service account (base58)")
	totalFeeBps := flag.Uint("fee-bps", fees.DefaultTotalFeeBps, "Total swap fee in basis points")
	creatorShareBps := flag.Uint("creator-share-bps", fees.DefaultCreatorShareBps, "Creator share of the fee in basis points")
	platformShareBps := flag.Uint("platform-share-bps", fees.DefaultPlatformShareBps, "Platform share of the fee in basis points")
	unlockDelay := flag.Duration("unlock-delay", bootstrap.DefaultUnlockDelay, "Receipt lock duration for bootstrapped pools")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[router] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *venueEndpoint == "" {
		logger.Fatal("--venue-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	admin := parseAccountFlag(logger, "admin-account", *adminAccount)
	treasury := parseAccountFlag(logger, "treasury-account", *treasuryAccount)
	depositor := parseAccountFlag(logger, "depositor-account", *depositorAccount)

	params, err := fees.NewParametersFromBps(*totalFeeBps, *creatorShareBps, *platformShareBps)
	if err != nil {
		logger.Fatalf("Invalid fee schedule: %v", err)
	}
	logger.Printf("Fee schedule: %d bps total, creator %d / platform %d",
		params.TotalFeeBps, params.CreatorShareBps, params.PlatformShareBps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Event fan-out: structured log, audit store and WebSocket hub.
	hub := events.NewHub(log.New(os.Stdout, "[events] ", log.LstdFlags))
	emitter := events.NewMulti(logger, []events.Sink{
		events.NewLogSink(log.New(os.Stdout, "[events] ", log.LstdFlags)),
		events.NewAuditSink(stores.eventStore),
		hub,
	}, events.WithErrorCallback(observability.RecordEventSinkError))

	// Wire services
	venueClient := venue.NewHTTPClient(*venueEndpoint)
	creatorRegistry := registry.New(stores.creatorStore, admin, emitter, logger)
	liquidityLocker := locker.New(stores.lockStore, stores.balanceStore, depositor, emitter, logger)
	swapRouter := router.New(venueClient, params, creatorRegistry, stores.balanceStore, treasury, emitter, logger)
	poolBootstrapper := bootstrap.New(venueClient, liquidityLocker, stores.bootstrapStore, admin, depositor, *unlockDelay, emitter, logger)

	server := api.NewServer(swapRouter, creatorRegistry, liquidityLocker, poolBootstrapper, hub, logger)
	httpServer := &http.Server{
		Addr:    *apiAddr,
		Handler: server.Routes(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
		hub.Close()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Track service uptime for the metrics endpoint.
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.TickUptime()
			}
		}
	}()

	logger.Printf("Starting HTTP API on %s", *apiAddr)
	err = httpServer.ListenAndServe()
	close(done)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// parseAccountFlag validates a required base58 account flag.
func parseAccountFlag(logger *log.Logger, name, value string) domain.AccountID {
	if value == "" {
		logger.Fatalf("--%s is required", name)
	}
	account, err := domain.ParseAccountID(value)
	if err != nil {
		logger.Fatalf("Invalid --%s: %v", name, err)
	}
	return account
}

// createStores creates all required stores and applies migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			creatorStore:   memory.NewCreatorStore(),
			lockStore:      memory.NewLockStore(),
			bootstrapStore: memory.NewBootstrapStore(),
			balanceStore:   memory.NewBalanceStore(),
			eventStore:     memory.NewSettlementEventStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply clickhouse migrations: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (registry, locks, bootstraps, balances)
		creatorStore:   pgstore.NewCreatorStore(pool),
		lockStore:      pgstore.NewLockStore(pool),
		bootstrapStore: pgstore.NewBootstrapStore(pool),
		balanceStore:   pgstore.NewBalanceStore(pool),

		// ClickHouse store (settlement audit trail)
		eventStore: chstore.NewSettlementEventStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
