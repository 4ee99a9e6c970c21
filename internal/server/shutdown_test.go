package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"review-dashboard/internal/config"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: 2 * time.Second,
	}
}

func TestGracefulServer_RunStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpServer := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	gs := NewGracefulServer(httpServer, logger, testServerConfig())

	var called atomic.Int32
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		called.Add(1)
		return nil
	})
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		called.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if called.Load() != 2 {
		t.Errorf("hooks called = %d, want 2", called.Load())
	}
}

func TestGracefulServer_HookErrorsAreJoined(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpServer := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	gs := NewGracefulServer(httpServer, logger, testServerConfig())

	errFlush := errors.New("flush failed")
	errClose := errors.New("close failed")
	gs.RegisterShutdownHook(func(ctx context.Context) error { return errFlush })
	gs.RegisterShutdownHook(func(ctx context.Context) error { return errClose })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	var err error
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if !errors.Is(err, errFlush) || !errors.Is(err, errClose) {
		t.Errorf("Run() error = %v, want both hook errors", err)
	}
}

func TestGracefulServer_ListenFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpServer := &http.Server{Addr: "256.0.0.1:bad", Handler: http.NotFoundHandler()}
	gs := NewGracefulServer(httpServer, logger, testServerConfig())

	if err := gs.Run(context.Background()); err == nil {
		t.Error("Run() with an invalid address should fail")
	}
}
