// Package lifecycle coordinates startup and shutdown hooks across subsystems.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup and shutdown hooks for the application lifecycle.
// A startup hook that cannot bring its subsystem up reports through Fail;
// the coordinator then never reports ready.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	ready      bool
	failures   []error
	mu         sync.RWMutex
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
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

// Fail records a startup failure for the named subsystem.
func (c *Coordinator) Fail(system string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, fmt.Errorf("%s: %w", system, err))
}

// Err returns the joined startup failures, or nil.
func (c *Coordinator) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return errors.Join(c.failures...)
}

// Ready returns true after all startup hooks have completed without failure.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready && len(c.failures) == 0
}

// WaitForStartup blocks until all startup hooks have completed and sets the ready flag.
// It returns the recorded startup failures, if any.
func (c *Coordinator) WaitForStartup() error {
	c.startupWg.Wait()
	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	return c.Err()
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

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
