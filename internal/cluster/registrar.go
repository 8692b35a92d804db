package cluster

import (
	"log/slog"

	"github.com/hoangpq/Toshi/internal/config"
)

// Register drives the registration handshake against the service-discovery
// registry: build the client, declare the cluster, resolve the node identity,
// then announce this instance. Each step depends on the previous one; the
// first failure is logged and the chain abandoned. Cluster membership is
// best-effort, so the node keeps running unregistered.
//
// On success the registry session is deliberately kept open: the ephemeral
// registration lasts exactly as long as the process.
func Register(settings *config.Settings) {
	registry, err := NewRegistryBuilder().
		WithClusterName(settings.ClusterName).
		WithAddress(settings.ConsulAddr).
		Build()
	if err != nil {
		slog.Error("could not build registry client", "error", err)
		return
	}

	if err := registry.RegisterCluster(); err != nil {
		slog.Error("could not register cluster", "cluster", settings.ClusterName, "error", err)
		registry.Close()
		return
	}

	id, err := InitNodeID(settings.Path)
	if err != nil {
		slog.Error("could not resolve node id", "path", settings.Path, "error", err)
		registry.Close()
		return
	}

	registry.SetNodeID(id)
	if err := registry.RegisterNode(settings.BindAddr()); err != nil {
		slog.Error("could not register node", "node_id", id, "error", err)
		registry.Close()
		return
	}
}
