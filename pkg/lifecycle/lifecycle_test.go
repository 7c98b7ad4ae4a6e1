package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/agrocheck/pkg/lifecycle"
)

func TestNotReadyBeforeStartup(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}
}

func TestReadyAfterStartup(t *testing.T) {
	lc := lifecycle.New()
	lc.WaitForStartup()

	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestNotReadyAfterShutdown(t *testing.T) {
	lc := lifecycle.New()
	lc.WaitForStartup()

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if lc.Ready() {
		t.Error("should not be ready once shutdown begins")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() {
			count.Add(1)
		})
	}

	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestContextCancelledOnShutdown(t *testing.T) {
	lc := lifecycle.New()
	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	select {
	case <-lc.Context().Done():
	default:
		t.Error("context should be cancelled after shutdown")
	}
}

func TestCheck(t *testing.T) {
	lc := lifecycle.New()
	errDown := errors.New("connection refused")

	t.Run("no checks", func(t *testing.T) {
		if failed := lc.Check(context.Background()); len(failed) != 0 {
			t.Errorf("failed: got %v, want none", failed)
		}
	})

	lc.AddCheck("database", func(context.Context) error { return nil })
	lc.AddCheck("storage", func(context.Context) error { return errDown })

	t.Run("reports failures by name", func(t *testing.T) {
		failed := lc.Check(context.Background())
		if len(failed) != 1 {
			t.Fatalf("failed: got %v, want one entry", failed)
		}
		if !errors.Is(failed["storage"], errDown) {
			t.Errorf("storage: got %v, want %v", failed["storage"], errDown)
		}
	})

	t.Run("replaces by name", func(t *testing.T) {
		lc.AddCheck("storage", func(context.Context) error { return nil })
		if failed := lc.Check(context.Background()); len(failed) != 0 {
			t.Errorf("failed: got %v, want none", failed)
		}
	})
}
