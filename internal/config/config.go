package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	DefaultConfigPath = "config/config.yml"

	defaultHost        = "0.0.0.0"
	defaultPort        = 8080
	defaultPath        = "data/"
	defaultLogLevel    = "info"
	defaultConsulAddr  = "127.0.0.1:8500"
	defaultClusterName = "kitsune"
	defaultPlaceAddr   = "0.0.0.0:8082"

	defaultShutdownTimeout = 5 * time.Second
)

// Settings is the immutable node configuration. It is loaded once at startup
// and shared by pointer across all components.
type Settings struct {
	MasterNode         bool          `yaml:"master"`
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	Path               string        `yaml:"path"`
	LogLevel           string        `yaml:"log_level"`
	LogJSON            bool          `yaml:"log_json"`
	ConsulAddr         string        `yaml:"consul_addr"`
	ClusterName        string        `yaml:"cluster_name"`
	PlaceAddr          string        `yaml:"place_addr"`
	EnableClustering   bool          `yaml:"enable_clustering"`
	AutoCommitDuration time.Duration `yaml:"auto_commit_duration"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the baseline settings. Every documented option has a
// default so a node can start with no config file at all.
func Default() Settings {
	return Settings{
		MasterNode:      true,
		Host:            defaultHost,
		Port:            defaultPort,
		Path:            defaultPath,
		LogLevel:        defaultLogLevel,
		ConsulAddr:      defaultConsulAddr,
		ClusterName:     defaultClusterName,
		PlaceAddr:       defaultPlaceAddr,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// Load reads settings from a YAML file. A missing file is not an error: the
// defaults are returned instead.
func Load(path string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if settings.ShutdownTimeout <= 0 {
		settings.ShutdownTimeout = defaultShutdownTimeout
	}

	return settings, nil
}

// BindAddr returns the host:port the node's primary server binds to.
func (s *Settings) BindAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
