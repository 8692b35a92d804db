package node

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/hoangpq/Toshi/internal/index"
)

// Signal asserts that shutdown is initiated at most once. Firing it twice is
// a programming error, not a runtime condition.
type Signal struct {
	fired atomic.Bool
}

func NewSignal() *Signal {
	return &Signal{}
}

// Fire marks shutdown as initiated. It panics if called a second time.
func (s *Signal) Fire() {
	if !s.fired.CompareAndSwap(false, true) {
		panic("shutdown signal fired twice, this is a bug")
	}
}

// Coordinator terminates the process exactly once: it races the primary task
// against the termination-request source and, on the first event, drives the
// ordered drain-clean-halt sequence.
type Coordinator struct {
	signal      *Signal
	termination <-chan string
	cleanup     func() error
	halt        context.CancelFunc
}

// NewCoordinator wires the coordinator to the shared catalog and the process
// termination source. halt cancels the runtime context, abruptly ending any
// background tasks still running.
func NewCoordinator(catalog *index.SharedCatalog, halt context.CancelFunc) *Coordinator {
	return &Coordinator{
		signal:      NewSignal(),
		termination: notifyTermination(),
		cleanup: func() error {
			return catalog.Write(func(c *index.Catalog) error {
				return c.Clear()
			})
		},
		halt: halt,
	}
}

// Wait runs the primary task and blocks until it ends or a termination
// request arrives. Whichever fires first triggers exactly one cleanup
// sequence: drain the primary task, clear the catalog under the exclusive
// lock, then halt the runtime. The returned error reflects only the cleanup
// chain itself; the loser of the race is abandoned.
func (c *Coordinator) Wait(ctx context.Context, primary Task) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- primary.Run(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("primary task ended", "error", err)
		} else {
			slog.Info("primary task ended")
		}
	case sig := <-c.termination:
		slog.Info("received termination request", "signal", sig)
	}

	c.signal.Fire()
	slog.Info("gracefully shutting down...")

	// bounded drain window before the exclusive catalog acquisition
	if err := primary.Shutdown(); err != nil {
		slog.Warn("primary task drain failed", "error", err)
	}

	if err := c.cleanup(); err != nil {
		return fmt.Errorf("clear index catalog: %w", err)
	}

	c.halt()
	return nil
}
