package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
}

func newLocalServer(t *testing.T) *Server {
	t.Helper()
	config := DefaultConfig(okHandler())
	config.Address = "127.0.0.1:0"
	srv, err := New(config)
	require.NoError(t, err)
	return srv
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig(okHandler())
	assert.Equal(t, ":3000", config.Address)
	assert.Equal(t, 15*time.Second, config.ReadTimeout)
	assert.Equal(t, 15*time.Second, config.WriteTimeout)
	assert.Equal(t, 60*time.Second, config.IdleTimeout)
	assert.Equal(t, 1<<20, config.MaxHeaderBytes)
}

func TestNewServerValidation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(DefaultConfig(nil))
	assert.Error(t, err)
}

func TestServerServesAndShutsDown(t *testing.T) {
	srv := newLocalServer(t)
	require.NoError(t, srv.Listen())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	resp, err := http.Get("http://" + srv.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}

func TestGracefulShutdownDefaults(t *testing.T) {
	gs := NewGracefulShutdown(newLocalServer(t), &ShutdownConfig{})
	assert.Equal(t, 30*time.Second, gs.timeout)
	assert.Len(t, gs.signals, 2)
	assert.NotNil(t, gs.logger)
}

func TestRunStopsOnContextAndRunsHooks(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	gs := NewGracefulShutdown(newLocalServer(t), &ShutdownConfig{Timeout: 5 * time.Second, Logger: zap.New(core)})

	var order []int
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		i := i
		gs.RegisterHook(func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, i)
			if i == 1 {
				return errors.New("hook failed")
			}
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("server listening").Len() == 1
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 1, logs.FilterMessage("shutdown hook failed").Len())
}

func TestShutdownForcesCloseAfterTimeout(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	defer close(release)

	config := DefaultConfig(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	config.Address = "127.0.0.1:0"
	srv, err := New(config)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	gs := NewGracefulShutdown(srv, &ShutdownConfig{Timeout: 50 * time.Millisecond, Logger: zap.New(core)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("server listening").Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	go func() {
		resp, err := http.Get("http://" + srv.Addr())
		if err == nil {
			resp.Body.Close()
		}
	}()
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the handler")
	}
	cancel()

	err = <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, logs.FilterMessage("server shutdown failed, forcing close").Len())
}

func TestShutdownIsIdempotent(t *testing.T) {
	gs := NewGracefulShutdown(newLocalServer(t), nil)
	var calls atomic.Int32
	gs.RegisterHook(func(context.Context) error {
		calls.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, gs.Shutdown())
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, calls.Load())
}

func TestRunReportsListenFailure(t *testing.T) {
	config := DefaultConfig(okHandler())
	config.Address = "256.0.0.1:0"
	srv, err := New(config)
	require.NoError(t, err)

	err = NewGracefulShutdown(srv, nil).Run(context.Background())
	assert.Error(t, err)
}
