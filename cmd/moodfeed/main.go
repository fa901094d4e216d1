package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"moodfeed/internal/wire"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app, cleanup, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	err = run(app, quit)

	// Closes the dispatcher (draining queued events), NATS, MongoDB and the store.
	cleanup()
	if err != nil {
		app.Log.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
	app.Log.Info("server stopped")
}

// run serves gRPC and HTTP until a signal arrives or either server fails,
// then stops both. Resources owned by app are left for the caller to release.
func run(app *wire.Application, quit <-chan os.Signal) error {
	logger := app.Log

	lis, err := net.Listen("tcp", app.Config.GRPCAddr())
	if err != nil {
		return errors.Wrap(err, "listen for gRPC")
	}

	errCh := make(chan error, 2)
	go func() {
		if err := app.GRPC.Serve(lis); err != nil {
			errCh <- errors.Wrap(err, "gRPC server")
		}
	}()
	go func() {
		logger.WithField("addr", app.HTTP.Addr).Info("HTTP server listening")
		if err := app.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "HTTP server")
		}
	}()

	var runErr error
	select {
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down")
	case runErr = <-errCh:
		logger.WithError(runErr).Error("server failed, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.HTTP.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("HTTP shutdown did not complete cleanly")
	}
	app.GRPC.GracefulStop()

	return runErr
}
