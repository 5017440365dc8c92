// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package supervisor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/trailmark/internal/cache"
	"github.com/tomtom215/trailmark/internal/logging"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// syncBuffer guards a bytes.Buffer written from supervisor goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("creates hierarchical supervisor tree", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  10 * time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		if tree.Root() == nil {
			t.Error("root supervisor should not be nil")
		}
		if tree.Config().FailureBackoff != time.Second {
			t.Errorf("FailureBackoff = %v, want 1s", tree.Config().FailureBackoff)
		}
	})

	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
		}
	})
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	t.Run("tree starts and stops gracefully", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   100 * time.Millisecond,
			ShutdownTimeout:  time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		cacheSvc := newMockService("mock-cache")
		rollupSvc := newMockService("mock-rollup")
		tree.AddCacheService(cacheSvc)
		tree.AddRollupService(rollupSvc)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- tree.Serve(ctx)
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("tree did not shut down in time")
		}

		if cacheSvc.startCount.Load() < 1 || rollupSvc.startCount.Load() < 1 {
			t.Error("both layers should have started their services")
		}
		if cacheSvc.stopCount.Load() != cacheSvc.startCount.Load() {
			t.Error("cache service should have stopped")
		}
	})

	t.Run("ServeBackground returns channel", func(t *testing.T) {
		tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		errCh := tree.ServeBackground(ctx)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(time.Second):
			t.Error("did not receive from error channel")
		}

		report, err := tree.UnstoppedServiceReport()
		if err != nil {
			t.Errorf("UnstoppedServiceReport() error = %v", err)
		}
		if len(report) != 0 {
			t.Errorf("unstopped services = %v, want none", report)
		}
	})
}

func TestSupervisorTreeFailureHandling(t *testing.T) {
	t.Run("failing rollup is restarted without disturbing the cache layer", func(t *testing.T) {
		tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
			FailureThreshold: 10,
			FailureBackoff:   10 * time.Millisecond,
			ShutdownTimeout:  time.Second,
		})

		failing := newMockService("failing-rollup").failTimes(2)
		stable := newMockService("stable-sweeper")

		tree.AddRollupService(failing)
		tree.AddCacheService(stable)

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		go tree.Serve(ctx)
		time.Sleep(200 * time.Millisecond)

		if failing.startCount.Load() < 3 {
			t.Errorf("expected at least 3 starts for failing service, got %d", failing.startCount.Load())
		}
		if got := stable.startCount.Load(); got != 1 {
			t.Errorf("stable service started %d times, want 1", got)
		}
	})

	t.Run("restarts are logged through the zerolog bridge", func(t *testing.T) {
		var out syncBuffer
		logger := slog.New(logging.NewSlogHandlerWithLogger(logging.NewTestLogger(&out)))

		tree, _ := NewSupervisorTree(logger, TreeConfig{
			FailureThreshold: 10,
			FailureBackoff:   10 * time.Millisecond,
			ShutdownTimeout:  time.Second,
		})
		tree.AddRollupService(newMockService("flaky-rollup").failTimes(1))

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		<-tree.ServeBackground(ctx)

		if !strings.Contains(out.String(), "flaky-rollup") {
			t.Errorf("supervisor log should mention the failing service, got: %s", out.String())
		}
	})
}

func TestSupervisorTreeRemoveRollupService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	svc := newMockService("removable")
	token := tree.AddRollupService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	time.Sleep(50 * time.Millisecond)
	if err := tree.RemoveRollupService(token); err != nil {
		t.Fatalf("RemoveRollupService() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for svc.stopCount.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if svc.stopCount.Load() == 0 {
		t.Error("removed service should have stopped")
	}

	cancel()
	<-errCh
}

func TestSupervisorTreeCacheSweeper(t *testing.T) {
	c, err := cache.New[int](cache.Config{Name: "tree_test", SweepInterval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	c.Set("short", 1, time.Millisecond)
	c.Set("long", 2, time.Hour)

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	tree.AddCacheService(c)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for c.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after supervised sweep", c.Len())
	}

	cancel()
	<-errCh
}

func TestDefaultTreeConfig(t *testing.T) {
	config := DefaultTreeConfig()

	if config.FailureThreshold != 5.0 {
		t.Errorf("expected FailureThreshold 5.0, got %f", config.FailureThreshold)
	}
	if config.FailureDecay != 30.0 {
		t.Errorf("expected FailureDecay 30.0, got %f", config.FailureDecay)
	}
	if config.FailureBackoff != 15*time.Second {
		t.Errorf("expected FailureBackoff 15s, got %v", config.FailureBackoff)
	}
	if config.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected ShutdownTimeout 10s, got %v", config.ShutdownTimeout)
	}
}
