package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// GracefulShutdown handles graceful server shutdown with cleanup hooks
type GracefulShutdown struct {
	server        *Server
	shutdownHooks []ShutdownHook
	timeout       time.Duration
	signals       []os.Signal
	logger        *zap.Logger
	mu            sync.Mutex
	shutdownOnce  sync.Once
	shutdownChan  chan struct{}
	shutdownError error
}

// ShutdownHook is a function called during graceful shutdown, after the
// server has stopped accepting requests
type ShutdownHook func(ctx context.Context) error

// ShutdownConfig holds graceful shutdown configuration
type ShutdownConfig struct {
	// Timeout is the maximum time to wait for shutdown
	Timeout time.Duration

	// Signals to listen for (default: SIGINT, SIGTERM)
	Signals []os.Signal

	// Logger for shutdown messages
	Logger *zap.Logger
}

// DefaultShutdownConfig returns default shutdown configuration
func DefaultShutdownConfig() *ShutdownConfig {
	return &ShutdownConfig{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Logger:  zap.NewNop(),
	}
}

// NewGracefulShutdown creates a new graceful shutdown handler
func NewGracefulShutdown(server *Server, config *ShutdownConfig) *GracefulShutdown {
	if config == nil {
		config = DefaultShutdownConfig()
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if len(config.Signals) == 0 {
		config.Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultShutdownConfig().Timeout
	}

	return &GracefulShutdown{
		server:       server,
		timeout:      config.Timeout,
		signals:      config.Signals,
		logger:       config.Logger,
		shutdownChan: make(chan struct{}),
	}
}

// RegisterHook registers a shutdown hook to be called during shutdown
func (gs *GracefulShutdown) RegisterHook(hook ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.shutdownHooks = append(gs.shutdownHooks, hook)
}

// Run serves until ctx is done, a shutdown signal arrives or the server
// fails, then shuts down.
func (gs *GracefulShutdown) Run(ctx context.Context) error {
	if err := gs.server.Listen(); err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		gs.logger.Info("server listening", zap.String("addr", gs.server.Addr()))
		errChan <- gs.server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, gs.signals...)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		gs.logger.Info("shutdown signal received", zap.Stringer("signal", sig))
	case <-ctx.Done():
		gs.logger.Info("context done, shutting down")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}
	return gs.Shutdown()
}

// Shutdown stops the server, then runs the hooks in registration order.
// Only the first call does the work; later calls wait for it.
func (gs *GracefulShutdown) Shutdown() error {
	gs.shutdownOnce.Do(func() {
		gs.logger.Info("initiating graceful shutdown", zap.Duration("timeout", gs.timeout))

		ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
		defer cancel()

		if err := gs.server.Shutdown(ctx); err != nil {
			gs.shutdownError = fmt.Errorf("server shutdown error: %w", err)
			gs.logger.Error("server shutdown failed, forcing close", zap.Error(err))
			if cerr := gs.server.Close(); cerr != nil {
				gs.logger.Error("server close failed", zap.Error(cerr))
			}
		}

		gs.mu.Lock()
		hooks := append([]ShutdownHook(nil), gs.shutdownHooks...)
		gs.mu.Unlock()

		for i, hook := range hooks {
			if err := hook(ctx); err != nil {
				// Continue with other hooks
				gs.logger.Error("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
			}
		}

		gs.logger.Info("shutdown complete")
		close(gs.shutdownChan)
	})

	<-gs.shutdownChan
	return gs.shutdownError
}
