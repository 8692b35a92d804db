package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hoangpq/Toshi/internal/node"
)

func main() {
	os.Exit(run())
}

func run() int {
	settings, err := initSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		return 1
	}

	initLogger(settings)
	slog.Info("starting toshi",
		"master", settings.MasterNode,
		"bind", settings.BindAddr(),
		"path", settings.Path,
		"clustering", settings.EnableClustering)

	printHeader(settings.MasterNode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := node.Bootstrap(settings)
	if err != nil {
		// fatal: nothing exists to clean up, bypass the shutdown path
		slog.Error("failed to build index catalog", "path", settings.Path, "error", err)
		return 1
	}

	runner := node.NewRunner(settings, catalog)
	primary := runner.Compose(ctx)

	coordinator := node.NewCoordinator(catalog, cancel)
	if err := coordinator.Wait(ctx, primary); err != nil {
		slog.Error("shutdown cleanup failed", "error", err)
		return 1
	}

	return 0
}
