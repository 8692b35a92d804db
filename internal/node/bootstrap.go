package node

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hoangpq/Toshi/internal/config"
	"github.com/hoangpq/Toshi/internal/index"
)

// Bootstrap prepares the node's on-disk state: it ensures the data path
// exists and builds the shared index catalog from it. A failure here is fatal
// to the caller; there is no catalog to clean up yet.
func Bootstrap(settings *config.Settings) (*index.SharedCatalog, error) {
	if _, err := os.Stat(settings.Path); os.IsNotExist(err) {
		slog.Info("data path does not exist, creating it", "path", settings.Path)
		if err := os.MkdirAll(settings.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", settings.Path, err)
		}
	}

	catalog, err := index.NewCatalog(settings.Path)
	if err != nil {
		return nil, fmt.Errorf("open index catalog at %s: %w", settings.Path, err)
	}

	return index.NewShared(catalog), nil
}
