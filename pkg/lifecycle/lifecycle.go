// Package lifecycle coordinates subsystem startup, readiness, and shutdown.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes a dependency. A nil error means the dependency can serve traffic.
type CheckFunc func(ctx context.Context) error

// Coordinator manages startup and shutdown hooks for the application lifecycle
// along with the named dependency checks reported by readiness probes.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	ready      atomic.Bool

	checksMu sync.RWMutex
	checks   map[string]CheckFunc
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		checks: make(map[string]CheckFunc),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// AddCheck registers a named dependency check. A later registration under
// the same name replaces the earlier one.
func (c *Coordinator) AddCheck(name string, fn CheckFunc) {
	c.checksMu.Lock()
	defer c.checksMu.Unlock()
	c.checks[name] = fn
}

// Check runs every registered dependency check sequentially, in name order,
// and returns the failures keyed by check name. An empty map means all passed.
func (c *Coordinator) Check(ctx context.Context) map[string]error {
	c.checksMu.RLock()
	checks := maps.Clone(c.checks)
	c.checksMu.RUnlock()

	failed := make(map[string]error)
	for _, name := range slices.Sorted(maps.Keys(checks)) {
		if err := checks[name](ctx); err != nil {
			failed[name] = err
		}
	}
	return failed
}

// Ready returns true after all startup hooks have completed and before shutdown begins.
func (c *Coordinator) Ready() bool {
	return c.ready.Load() && c.ctx.Err() == nil
}

// WaitForStartup blocks until all startup hooks have completed and sets the ready flag.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.ready.Store(true)
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
