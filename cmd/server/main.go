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

	"github.com/Pietro-G/real-time-stock-dashboard/internal/api"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/config"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/db"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/external"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/notifications"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/repository"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/scheduler"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/stream"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/synth"
)

const banner = `
╔══════════════════════════════════════╗
║   Real-Time Stock Dashboard Backend  ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.Migrate(migrateCtx, pool); err != nil {
		cancelMigrate()
		fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
		os.Exit(1)
	}
	cancelMigrate()
	fmt.Println("[DB] Schema ready")

	// Repos
	watchlistRepo := repository.NewWatchlistRepo(pool)
	priceRepo := repository.NewPriceRepo(pool)

	// Quote provider
	yahoo := external.NewYahooClient()

	// Live update fan-out
	broker := stream.NewBroker()
	defer broker.Close()

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional webhook sink for synthesized prices
	notify := notifications.NewSender(cfg.WebhookURL, cfg.SenderName)
	if notify.Enabled() {
		updates, cancel := broker.Subscribe()
		defer cancel()
		go notify.Watch(ctx, updates)
		fmt.Println("[CHAT] Webhook notifications enabled")
	}

	// 1. API server
	srv := api.NewServer(pool, yahoo, stream.Handler(broker, cfg.CORSAllowOrigin), cfg.Port, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Price synthesis
	engine := synth.NewEngine(watchlistRepo, priceRepo, broker, synth.Options{
		SeedPrice:      cfg.SeedPrice,
		MaxMovePercent: cfg.MaxMovePercent,
	})
	sched := scheduler.New(engine, scheduler.Config{CronSpec: cfg.SynthesisCron})
	if err := sched.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "[SCHEDULER] Start failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
