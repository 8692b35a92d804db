package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/hoangpq/Toshi/internal/config"
)

// initSettings loads the config file (defaults if absent) and applies any
// explicitly passed command-line flags on top of it.
func initSettings() (*config.Settings, error) {
	var (
		configPath = flag.String("config", config.DefaultConfigPath, "path to the config file")
		level      = flag.String("level", "", "log level (debug, info, warn, error)")
		dataPath   = flag.String("data-path", "", "base path for index data")
		host       = flag.String("host", "", "host to bind the primary server to")
		port       = flag.Int("port", 0, "port to bind the primary server to")
		consulAddr = flag.String("consul-addr", "", "address of the service-discovery registry")
		cluster    = flag.String("cluster-name", "", "name of the cluster to join")
		placeAddr  = flag.String("place-addr", "", "bind address of the placement engine")
		clustering = flag.Bool("enable-clustering", false, "register with the cluster registry")
		master     = flag.Bool("master", true, "run as a master (coordinating) node")
		autoCommit = flag.Duration("auto-commit", 0, "auto-commit interval, 0 disables")
	)
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "level":
			settings.LogLevel = *level
		case "data-path":
			settings.Path = *dataPath
		case "host":
			settings.Host = *host
		case "port":
			settings.Port = *port
		case "consul-addr":
			settings.ConsulAddr = *consulAddr
		case "cluster-name":
			settings.ClusterName = *cluster
		case "place-addr":
			settings.PlaceAddr = *placeAddr
		case "enable-clustering":
			settings.EnableClustering = *clustering
		case "master":
			settings.MasterNode = *master
		case "auto-commit":
			settings.AutoCommitDuration = *autoCommit
		}
	})

	return &settings, nil
}

// initLogger configures the process-wide slog logger once; there is no
// per-component override.
func initLogger(settings *config.Settings) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(settings.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if settings.LogJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
