package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API server until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(server.NewAuthHandler(r.managers))
	router.Handler(server.NewMigrateHandler(r.engine, r.clients, r.logger))

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		r.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
