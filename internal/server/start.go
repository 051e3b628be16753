package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start runs the HTTP server until an interrupt or terminate signal arrives,
// then shuts everything down in dependency order.
func (s *Server) Start() {
	bridgeCtx, cancel := context.WithCancel(context.Background())
	s.bridgeCancel = cancel
	if err := s.bridge.Start(bridgeCtx); err != nil {
		slog.Error("Failed to start realtime bridge", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := s.E.Start(s.Cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()
	slog.Info("Server started", "addr", s.Cfg.HTTPAddr)

	waitForShutdown()
	s.Shutdown()
}

// waitForShutdown blocks until an interrupt or terminate signal is received.
func waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
}

// Shutdown stops the HTTP server, the realtime bridge, the bus and the
// store.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.E.Shutdown(ctx); err != nil {
		slog.Error("Failed to shut down HTTP server cleanly", "error", err)
	}

	if s.bridgeCancel != nil {
		s.bridgeCancel()
	}
	if err := s.bus.Close(); err != nil {
		slog.Error("Failed to close message bus", "error", err)
	}
	if err := s.repoClose(); err != nil {
		slog.Error("Failed to close storage", "error", err)
	}
	slog.Info("Server stopped")
}
