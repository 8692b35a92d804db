package commit

import (
	"context"
	"log/slog"
	"time"

	"github.com/hoangpq/Toshi/internal/index"
)

// Watcher periodically commits every index in the catalog. It has no
// cancellation handle of its own: it runs until the runtime context is
// cancelled at shutdown.
type Watcher struct {
	catalog  *index.SharedCatalog
	interval time.Duration
}

func NewWatcher(catalog *index.SharedCatalog, interval time.Duration) *Watcher {
	return &Watcher{
		catalog:  catalog,
		interval: interval,
	}
}

// Start launches the commit loop in the background.
func (w *Watcher) Start(ctx context.Context) {
	slog.Info("starting commit watcher", "interval", w.interval)

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("commit watcher stopped")
				return
			case <-ticker.C:
				err := w.catalog.Read(func(c *index.Catalog) error {
					return c.CommitAll()
				})
				if err != nil {
					slog.Error("auto-commit failed", "error", err)
				}
			}
		}
	}()
}
