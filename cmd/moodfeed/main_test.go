package main

import (
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodfeed/internal/common"
	"moodfeed/internal/config"
	"moodfeed/internal/grpcserver"
	"moodfeed/internal/wire"
)

func newTestApp(t *testing.T, httpAddr, grpcPort string) *wire.Application {
	t.Helper()
	log, _ := test.NewNullLogger()
	tokens := common.NewTokenManager("test-secret", time.Hour, "moodfeed")
	return &wire.Application{
		Config: &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", GRPCPort: grpcPort}},
		Log:    log,
		HTTP:   &http.Server{Addr: httpAddr, Handler: http.NotFoundHandler()},
		GRPC:   grpcserver.New(tokens, log),
	}
}

func runAsync(app *wire.Application, quit <-chan os.Signal) <-chan error {
	done := make(chan error, 1)
	go func() { done <- run(app, quit) }()
	return done
}

func TestRun_HTTPFailureReturnsInsteadOfExiting(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	app := newTestApp(t, busy.Addr().String(), "0")

	select {
	case err := <-runAsync(app, make(chan os.Signal)):
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP server")
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the HTTP server failed")
	}
}

func TestRun_SignalStopsCleanly(t *testing.T) {
	app := newTestApp(t, "127.0.0.1:0", "0")
	quit := make(chan os.Signal, 1)
	done := runAsync(app, quit)

	quit <- syscall.SIGTERM
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the signal")
	}
}

func TestRun_GRPCListenFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	_, port, err := net.SplitHostPort(busy.Addr().String())
	require.NoError(t, err)

	app := newTestApp(t, "127.0.0.1:0", port)
	err = run(app, make(chan os.Signal))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen for gRPC")
}
