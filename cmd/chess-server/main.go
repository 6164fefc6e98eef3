// Package main runs the reference game server: the JSON API the board
// client talks to, an optional move journal and optional page serving.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessboard/cmd/chess-server/cli"
	"chessboard/internal/logging"
	"chessboard/internal/server/engine"
	"chessboard/internal/server/http"
	"chessboard/internal/server/service"
	"chessboard/internal/server/storage"
	"chessboard/internal/server/webserver"

	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 5000, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, WAL journal)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		seed        = flag.Uint64("seed", 0, "Seed for bot move selection (0 picks one from the clock)")
		enginePath  = flag.String("engine", "", "Path to a UCI engine used for bot moves (built-in bot if empty)")
		engineTime  = flag.Duration("engine-movetime", 200*time.Millisecond, "Engine search time per bot move")
		engineSkill = flag.Int("engine-skill", -1, "Engine skill level 0-20 (-1 keeps the engine default)")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error, off")
		logFormat   = flag.String("log-format", logging.FormatConsole, "Log format: console or json")

		// Web UI server flags
		serve     = flag.Bool("serve", false, "Serve the game pages")
		webHost   = flag.String("web-host", "localhost", "Web UI server host")
		webPort   = flag.Int("web-port", 9090, "Web UI server port")
		assetsDir = flag.String("assets", "", "Directory with chess-client.wasm, wasm_exec.js and piece images")
	)
	flag.Parse()

	logger, err := logging.New(*logLevel, *logFormat)
	if err != nil {
		log.Fatalf("Invalid logging flags: %v", err)
	}
	defer logger.Sync()

	var store *storage.Store
	if *storagePath != "" {
		logger.Info("initializing persistent storage", zap.String("path", *storagePath))
		store, err = storage.NewStore(*storagePath, *dev, logger)
		if err != nil {
			logger.Fatal("failed to initialize storage", zap.Error(err))
		}
		if err := store.InitDB(); err != nil {
			logger.Fatal("failed to initialize schema", zap.Error(err))
		}
	} else {
		logger.Info("persistent storage disabled (use -storage-path to enable)")
	}

	svc := service.New(store, logger)
	if *seed != 0 {
		svc.SetSeed(*seed)
	}
	if *enginePath != "" {
		uci, err := engine.New(context.Background(), *enginePath, engine.Options{
			MoveTime:   *engineTime,
			SkillLevel: *engineSkill,
		}, logger)
		if err != nil {
			logger.Fatal("failed to start engine", zap.Error(err))
		}
		defer uci.Close()
		svc.SetEngine(uci)
	}

	app := http.NewFiberApp(svc, *dev, logger)
	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		logger.Info("chess API server starting",
			zap.String("addr", "http://"+apiAddr),
			zap.Bool("dev", *dev),
			zap.String("storage", svc.GetStorageHealth()))
		if err := app.Listen(apiAddr); err != nil {
			logger.Error("API server listen error", zap.Error(err))
		}
	}()

	if *serve {
		webAddr := fmt.Sprintf("%s:%d", *webHost, *webPort)
		cfg := webserver.Config{
			APIURL:    "http://" + apiAddr,
			AssetsDir: *assetsDir,
			Logger:    logger,
		}
		go func() {
			logger.Info("web UI server starting",
				zap.String("addr", "http://"+webAddr),
				zap.String("api", cfg.APIURL))
			if err := webserver.Start(*webHost, *webPort, cfg); err != nil {
				logger.Error("web UI server error", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down servers")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	// closes storage after draining queued journal writes
	if err := svc.Shutdown(); err != nil {
		logger.Warn("service shutdown error", zap.Error(err))
	}

	logger.Info("servers exited")
}
