package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/api/ws"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/config"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/nats"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/redis"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/websocket"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/pkg/logger"
)

// App holds the server-side dependencies: the push broker, the authoritative
// store and the websocket surface that hosts one sync engine per session.
type App struct {
	cfg         config.Config
	logger      logger.Logger
	natsClient  *nats.Client
	redisClient *redis.Client
	hub         *websocket.Hub
	httpServer  *http.Server
	rootCtx     context.Context
	cancel      context.CancelFunc
}

// NewApp initializes and connects all application dependencies.
func NewApp(cfg config.Config) (*App, error) {
	baseLogger := logger.NewLogger(cfg.LogLevel, cfg.LogFile)
	rootCtx := logger.NewContext(context.Background(), baseLogger)
	rootCtx, rootCancel := context.WithCancel(rootCtx)

	log := baseLogger.WithModule("app")
	log.Infof("Initializing application components...")

	natsClient, err := nats.NewClient(cfg.NATSURL, baseLogger)
	if err != nil {
		rootCancel()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	redisClient, err := redis.NewClient(cfg.RedisURL, cfg.HistoryLimit)
	if err != nil {
		rootCancel()
		natsClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	httpServer := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: ws.SetupWebSocketRoutes(ws.WSConfig{
			Hub:     hub,
			Remote:  redisClient,
			Bus:     natsClient,
			Cfg:     cfg,
			RootCtx: rootCtx,
		}),
	}

	app := &App{
		cfg:         cfg,
		logger:      log,
		natsClient:  natsClient,
		redisClient: redisClient,
		hub:         hub,
		httpServer:  httpServer,
		rootCtx:     rootCtx,
		cancel:      rootCancel,
	}

	log.Infof("Application initialized successfully")
	return app, nil
}

// Start runs the application and handles graceful shutdown on signal.
func (a *App) Start() error {
	log := a.logger.WithFields(map[string]interface{}{"port": a.cfg.Port})
	log.Infof("Starting application server")

	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Warnf("Received shutdown signal: %s", sig.String())

	return a.Stop()
}

// Stop gracefully shuts down the server, the sessions and both backends.
func (a *App) Stop() error {
	a.logger.Infof("Initiating graceful shutdown")

	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Errorf("HTTP server shutdown error: %v", err)
	}

	a.logger.Infof("Closing client sessions")
	a.hub.Close()

	a.logger.Infof("Closing NATS connection")
	a.natsClient.Close()

	a.logger.Infof("Closing Redis connection")
	if err := a.redisClient.Close(); err != nil {
		a.logger.Errorf("Redis close error: %v", err)
	}

	a.logger.Infof("Shutdown completed successfully")
	return nil
}
