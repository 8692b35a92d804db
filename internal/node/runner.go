package node

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hoangpq/Toshi/internal/cluster"
	"github.com/hoangpq/Toshi/internal/commit"
	"github.com/hoangpq/Toshi/internal/config"
	toshihttp "github.com/hoangpq/Toshi/internal/http"
	"github.com/hoangpq/Toshi/internal/index"
	"github.com/hoangpq/Toshi/internal/placement"
	"github.com/hoangpq/Toshi/internal/rpc"
)

// Task is a long-running unit of work. Run blocks until the task ends or ctx
// is cancelled; Shutdown drains it within a bounded window.
type Task interface {
	Run(ctx context.Context) error
	Shutdown() error
}

// placementNodeID is the raft id of the local placement voter. Nodes joining
// an existing group are assigned ids through membership proposals.
const placementNodeID = 1

// Runner composes the concurrent task set for the node's role and hands back
// the single primary task whose completion ends normal operation. All other
// tasks are background tasks: their outcome is logged at their own boundary
// and never observed by the shutdown path.
type Runner struct {
	settings *config.Settings

	// collaborator factories, replaceable in tests
	register     func(*config.Settings)
	startWatcher func(ctx context.Context)
	runPlacement func(ctx context.Context) error
	newRouter    func() Task
	newRPC       func() Task
}

func NewRunner(settings *config.Settings, catalog *index.SharedCatalog) *Runner {
	r := &Runner{
		settings: settings,
	}

	r.register = cluster.Register
	r.startWatcher = func(ctx context.Context) {
		commit.NewWatcher(catalog, settings.AutoCommitDuration).Start(ctx)
	}
	r.runPlacement = func(ctx context.Context) error {
		return placement.NewEngine(placementNodeID, settings.PlaceAddr).Run(ctx)
	}
	r.newRouter = func() Task {
		return toshihttp.NewServer(catalog, settings.BindAddr(), settings.ShutdownTimeout)
	}
	r.newRPC = func() Task {
		return rpc.NewServer(catalog, settings.BindAddr(), settings.ShutdownTimeout)
	}

	return r
}

// Compose builds the role's task set. Background tasks are launched here;
// the returned primary task is started by the shutdown coordinator.
func (r *Runner) Compose(ctx context.Context) Task {
	if !r.settings.MasterNode {
		slog.Info("I am a data node, binding RPC listener", "addr", r.settings.BindAddr())
		return r.newRPC()
	}

	// the commit watcher starts strictly before the primary task serves
	if r.settings.AutoCommitDuration > 0 {
		r.startWatcher(ctx)
	}

	if r.settings.EnableClustering {
		// registration runs to completion, successful or abandoned, before
		// the placement engine and the router launch
		r.register(r.settings)

		go func() {
			if err := r.runPlacement(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("placement engine failed", "error", err)
			}
		}()
	}

	slog.Info("I am a master node, binding HTTP router", "addr", r.settings.BindAddr())
	return r.newRouter()
}
