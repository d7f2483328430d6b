package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pokewilds/pokewilds-server-go/internal/battle"
	"github.com/pokewilds/pokewilds-server-go/internal/collection"
	"github.com/pokewilds/pokewilds-server-go/internal/config"
	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/lobby"
	"github.com/pokewilds/pokewilds-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting PokeWilds server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Static game data
	moves := dex.NewMoveRepository(cfg.Data.MovesPath, cfg.Data.TypeChartPath, logger)
	templates := dex.NewTemplateRepository(cfg.Data.SpeciesPath, moves, logger)

	// Database
	pool, err := collection.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	store := collection.NewPostgresStore(pool, templates, logger)
	logger.Info("collection store initialized")

	// World
	hub := lobby.NewHub(lobby.HubOptions{
		WriteTimeout:   cfg.Server.WriteTimeout,
		PongTimeout:    cfg.Server.PongTimeout,
		PingInterval:   cfg.Server.PingInterval,
		MaxMessageSize: cfg.Server.MaxMessageSize,
	}, logger)
	world := lobby.New("overworld", hub, logger)
	logger.Info("lobby initialized", zap.String("lobby_id", world.ID))

	// Battles
	battleMgr := battle.NewManager(store, world, templates, battle.NewRand(), logger)
	logger.Info("battle manager initialized")

	gateway := server.NewGateway(hub, world, battleMgr, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: gateway.Handler(),
	}

	go func() {
		logger.Info("starting WebSocket server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("WebSocket server error", zap.Error(serveErr))
		}
	}()

	logger.Info("PokeWilds server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("PokeWilds server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
