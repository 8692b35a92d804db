package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	settings := Default()

	if !settings.MasterNode {
		t.Fatal("expected master node by default")
	}
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected default host 0.0.0.0, got %s", settings.Host)
	}
	if settings.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", settings.Port)
	}
	if settings.Path != "data/" {
		t.Fatalf("expected default path data/, got %s", settings.Path)
	}
	if settings.ConsulAddr != "127.0.0.1:8500" {
		t.Fatalf("expected default registry address 127.0.0.1:8500, got %s", settings.ConsulAddr)
	}
	if settings.ClusterName != "kitsune" {
		t.Fatalf("expected default cluster name kitsune, got %s", settings.ClusterName)
	}
	if settings.EnableClustering {
		t.Fatal("clustering should be disabled by default")
	}
	if settings.AutoCommitDuration != 0 {
		t.Fatalf("auto-commit should be disabled by default, got %s", settings.AutoCommitDuration)
	}
	if settings.ShutdownTimeout != 5*time.Second {
		t.Fatalf("expected default shutdown timeout 5s, got %s", settings.ShutdownTimeout)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "no-such-config.yml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if settings != Default() {
		t.Fatalf("expected defaults, got %+v", settings)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	content := `
master: false
host: 127.0.0.1
port: 9000
path: /tmp/toshi-test
cluster_name: vulpes
enable_clustering: true
log_level: debug
`
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if settings.MasterNode {
		t.Fatal("expected data node role")
	}
	if settings.Host != "127.0.0.1" || settings.Port != 9000 {
		t.Fatalf("unexpected bind settings: %s:%d", settings.Host, settings.Port)
	}
	if settings.Path != "/tmp/toshi-test" {
		t.Fatalf("unexpected path: %s", settings.Path)
	}
	if settings.ClusterName != "vulpes" {
		t.Fatalf("unexpected cluster name: %s", settings.ClusterName)
	}
	if !settings.EnableClustering {
		t.Fatal("expected clustering enabled")
	}
	if settings.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %s", settings.LogLevel)
	}
	// untouched options keep their defaults
	if settings.ConsulAddr != "127.0.0.1:8500" {
		t.Fatalf("registry address should keep its default, got %s", settings.ConsulAddr)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("port: [not a port"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestBindAddr(t *testing.T) {
	settings := Default()
	settings.Host = "0.0.0.0"
	settings.Port = 8080

	if got := settings.BindAddr(); got != "0.0.0.0:8080" {
		t.Fatalf("expected 0.0.0.0:8080, got %s", got)
	}
}
