// Package main runs the price sentinel service: the polling scheduler,
// the action executor, the WebSocket hub, and the management HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-price-sentinel/internal/api"
	"solana-price-sentinel/internal/campaign"
	"solana-price-sentinel/internal/executor"
	"solana-price-sentinel/internal/monitor"
	"solana-price-sentinel/internal/notify"
	"solana-price-sentinel/internal/pricefeed"
	"solana-price-sentinel/internal/storage"
	chstore "solana-price-sentinel/internal/storage/clickhouse"
	"solana-price-sentinel/internal/storage/memory"
	"solana-price-sentinel/internal/storage/migrations"
	pgstore "solana-price-sentinel/internal/storage/postgres"
	"solana-price-sentinel/internal/trade"
	"solana-price-sentinel/internal/ws"
)

// allStores holds all storage implementations.
type allStores struct {
	history storage.TriggerHistoryStore
	wallets storage.WalletStore
	ticks   storage.PriceTickStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	feedURL := flag.String("feed-url", os.Getenv("PRICE_FEED_URL"), "Price feed base URL (default GeckoTerminal)")
	tradeURL := flag.String("trade-url", os.Getenv("TRADE_SERVICE_URL"), "Trade service endpoint (trades disabled when empty)")
	tradeAPIKey := flag.String("trade-api-key", os.Getenv("TRADE_SERVICE_API_KEY"), "Trade service API key")
	telegramTokens := flag.String("telegram-tokens", os.Getenv("TELEGRAM_BOT_TOKENS"), "Comma-separated accountID=botToken pairs")
	pollInterval := flag.Duration("poll-interval", 2*time.Second, "Price polling interval")
	fetchTimeout := flag.Duration("fetch-timeout", 5*time.Second, "Per-campaign price fetch timeout")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Price feed
	var feedOpts []pricefeed.FeedOption
	if *feedURL != "" {
		feedOpts = append(feedOpts, pricefeed.WithBaseURL(*feedURL))
	}
	feed := pricefeed.NewGeckoTerminalFeed(feedOpts...)

	// Campaign registry
	campaigns := campaign.NewStore(feed, log.New(os.Stdout, "[campaign] ", log.LstdFlags))

	// Action channels
	var trades trade.Executor
	if *tradeURL != "" {
		trades = trade.NewHTTPExecutor(*tradeURL, trade.WithAPIKey(*tradeAPIKey))
	}

	var telegram executor.TelegramSender
	if tokens := parseTelegramTokens(*telegramTokens); len(tokens) > 0 {
		telegram = notify.NewTelegramSender(tokens)
	}

	exec := executor.New(executor.Options{
		Trades:   trades,
		Telegram: telegram,
		Discord:  notify.NewDiscordNotifier(),
		Wallets:  stores.wallets,
		History:  stores.history,
		Logger:   log.New(os.Stdout, "[executor] ", log.LstdFlags),
	})

	// Event fan-out
	hub := ws.NewHub(log.New(os.Stdout, "[ws] ", log.LstdFlags))
	archiver := monitor.NewArchiver(monitor.ArchiverOptions{
		Store:  stores.ticks,
		Logger: log.New(os.Stdout, "[archiver] ", log.LstdFlags),
	})

	sched := monitor.NewScheduler(monitor.SchedulerOptions{
		Store:        campaigns,
		Feed:         feed,
		Dispatcher:   exec,
		PollInterval: *pollInterval,
		FetchTimeout: *fetchTimeout,
		Logger:       log.New(os.Stdout, "[scheduler] ", log.LstdFlags),
	})
	sched.Subscribe(hub)
	sched.Subscribe(archiver)

	// Management API
	server := api.NewServer(api.Options{
		Campaigns: campaigns,
		History:   stores.history,
		Wallets:   stores.wallets,
		Ticks:     stores.ticks,
		WSHandler: hub,
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:    *listenAddr,
		Handler: server.Handler(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	errCh := make(chan error, 3)

	go func() {
		if err := sched.Run(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("scheduler: %w", err)
		}
	}()

	go func() {
		if err := archiver.Run(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("archiver: %w", err)
		}
	}()

	go func() {
		if err := hub.Run(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("ws hub: %w", err)
		}
	}()

	logger.Printf("Starting HTTP server on %s", *listenAddr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		cancel()
	}
	done <- runErr

	if runErr != nil {
		logger.Fatalf("Server error: %v", runErr)
	}
	logger.Println("Shutdown complete")
}

// createStores creates all required stores, running migrations first.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			history: memory.NewTriggerHistoryStore(),
			wallets: memory.NewWalletStore(),
			ticks:   memory.NewPriceTickStore(),
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
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		history: pgstore.NewTriggerHistoryStore(pool),
		wallets: pgstore.NewWalletStore(pool),
		ticks:   chstore.NewPriceTickStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// parseTelegramTokens parses "acct1=token1,acct2=token2" into a map.
func parseTelegramTokens(raw string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		tokens[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return tokens
}

// envOr returns the environment variable value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
