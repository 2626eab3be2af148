package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bet-ops-dashboard-go/internal/config"
	"bet-ops-dashboard-go/internal/database"
	"bet-ops-dashboard-go/internal/logger"
	"bet-ops-dashboard-go/internal/notify"
	"bet-ops-dashboard-go/internal/reconcile"
	"bet-ops-dashboard-go/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database and store
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")
	st := store.NewGormStore(db)

	// Notification sink: webhook when configured, otherwise the log
	var notifier notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(&cfg.Notify, log)
		log.Info("Using webhook notifications", zap.String("url", cfg.Notify.WebhookURL))
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	milestones := reconcile.NewMilestoneNotifier(st, notifier, log)
	closure := reconcile.NewClosureService(st, log)
	engine := reconcile.NewEngine(log, &cfg.Dashboard, st, milestones, notifier)

	// Coalesce in-progress draft edits into a single delayed write
	autosaver := reconcile.NewAutosaver(cfg.Dashboard.AutosaveDelay, func(d reconcile.Draft) error {
		payload, err := json.Marshal(d)
		if err != nil {
			return err
		}
		return st.SaveDraft(context.Background(), cfg.Dashboard.UserID, d.Mode, string(payload))
	}, log)
	defer autosaver.Close()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Periodic re-check loop (gates the high-activity notification class)
	go engine.Run(ctx, cfg.Dashboard.UserID)

	// Setup HTTP server
	mux := http.NewServeMux()
	apiHandler := NewAPIHandler(log, st, engine, closure, autosaver, cfg.Dashboard.UserID)

	mux.HandleFunc("/api/calc/dutching", apiHandler.DutchingHandler)
	mux.HandleFunc("/api/calc/surebet", apiHandler.SurebetHandler)
	mux.HandleFunc("/api/reports/daily", apiHandler.DailyReportHandler)
	mux.HandleFunc("/api/goal", apiHandler.GoalHandler)
	mux.HandleFunc("/api/operations/close", apiHandler.CloseOperationHandler)
	mux.HandleFunc("/api/operations/draft", apiHandler.DraftHandler)
	mux.HandleFunc("/api/days/close", apiHandler.CloseDayHandler)
	mux.HandleFunc("/api/operations/history", apiHandler.HistoryHandler)
	mux.HandleFunc("/api/transactions", apiHandler.TransactionsHandler)
	mux.HandleFunc("/health", apiHandler.HealthHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	log.Info("Starting web server", zap.String("address", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Web server failed", zap.Error(err))
	}

	log.Info("Dashboard has been shut down.")
}
