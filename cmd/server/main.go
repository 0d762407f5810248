package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/db"
	"ctchen222/tictactoe/internal/events"
	"ctchen222/tictactoe/internal/logger"
	"ctchen222/tictactoe/internal/server"
	"ctchen222/tictactoe/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; environment only when empty")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	if err := logger.Init(cfg.LogLevel); err != nil {
		slog.Warn("falling back to info level", "error", err)
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	difficulty, err := bot.ParseDifficulty(cfg.Game.Difficulty)
	if err != nil {
		log.Fatalf("invalid game difficulty: %v", err)
	}

	opts := server.Options{
		VsComputer:    cfg.Game.VsComputer,
		Difficulty:    difficulty,
		MoveTimeout:   cfg.Game.MoveTimeout,
		ComputerDelay: cfg.Game.ComputerDelay,
	}

	// Initialize Redis
	if cfg.Redis.Enabled {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.GetRedisAddr())
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		opts.Publisher = events.NewRedisPublisher(rdb, cfg.Redis.Channel)
		slog.Info("publishing game events to redis", "redis.addr", cfg.Redis.GetRedisAddr(), "redis.channel", cfg.Redis.Channel)
	}

	srv := server.NewServer(ctx, opts)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server exiting")
}
