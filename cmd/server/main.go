package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Avzar/AeroBot/internal/airports"
	"github.com/Avzar/AeroBot/internal/api"
	"github.com/Avzar/AeroBot/internal/cache"
	"github.com/Avzar/AeroBot/internal/config"
	"github.com/Avzar/AeroBot/internal/storage/sqlite"
	"github.com/Avzar/AeroBot/internal/weather"
	"github.com/Avzar/AeroBot/internal/websocket"
	"github.com/Avzar/AeroBot/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Optional .env for secrets like AEROBOT_NOTAMS_API_KEY
	_ = godotenv.Load()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting AeroBot server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Query history storage
	historyStorage, err := sqlite.NewHistoryStorage(cfg.Storage.SQLitePath, log)
	if err != nil {
		log.Error("Failed to create SQLite storage", logger.Error(err))
		os.Exit(1)
	}
	defer historyStorage.Close()
	log.Info("Using SQLite storage", logger.String("path", cfg.Storage.SQLitePath))

	// Airport directory
	directory := airports.NewDirectory(log)
	records, err := airports.LoadCSV(cfg.Airports.CSVPath)
	if err != nil {
		log.Error("Failed to load airport database",
			logger.String("path", cfg.Airports.CSVPath),
			logger.Error(err))
		os.Exit(1)
	}
	directory.Load(records)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket server
	wsServer := websocket.NewServer(log)
	go wsServer.Run(ctx)

	// Weather service
	wxConfig := weather.Config(cfg.Weather)
	store := cache.New(time.Duration(wxConfig.CacheTTLSeconds) * time.Second)
	weatherService := weather.NewService(wxConfig, store, wsServer, log)

	// API router
	router := api.NewRouter(directory, weatherService, historyStorage, cfg, log, wsServer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", server.Addr), logger.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	// Stop the websocket hub before closing the listener
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	} else {
		log.Info("HTTP server shutdown complete")
	}

	log.Info("Server fully stopped")
}
