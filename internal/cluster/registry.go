package cluster

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	registryRoot     = "/toshi"
	sessionTimeout   = 5 * time.Second
	connectedTimeout = 10 * time.Second
)

// Registry is a handle to the service-discovery registry, backed by a
// ZooKeeper ensemble. A node announces itself as an ephemeral znode under its
// cluster path, so the registration lives exactly as long as the session.
type Registry struct {
	conn        *zk.Conn
	clusterName string
	nodeID      string
}

// RegistryBuilder assembles a Registry client.
type RegistryBuilder struct {
	clusterName string
	address     string
}

func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

func (b *RegistryBuilder) WithClusterName(name string) *RegistryBuilder {
	b.clusterName = name
	return b
}

func (b *RegistryBuilder) WithAddress(addr string) *RegistryBuilder {
	b.address = addr
	return b
}

// Build validates the builder and opens the registry connection. The
// connection is established asynchronously; registration calls wait for it.
func (b *RegistryBuilder) Build() (*Registry, error) {
	if b.clusterName == "" {
		return nil, fmt.Errorf("registry: cluster name is required")
	}
	if b.address == "" || !strings.Contains(b.address, ":") {
		return nil, fmt.Errorf("registry: invalid address %q", b.address)
	}

	conn, _, err := zk.Connect([]string{b.address}, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("registry: connect to %s: %w", b.address, err)
	}

	return &Registry{
		conn:        conn,
		clusterName: b.clusterName,
	}, nil
}

// RegisterCluster declares the cluster's entry in the registry. Safe to
// repeat across restarts.
func (r *Registry) RegisterCluster() error {
	if err := r.waitConnected(connectedTimeout); err != nil {
		return err
	}
	if err := r.ensurePath(r.clusterPath()); err != nil {
		return fmt.Errorf("registry: register cluster %s: %w", r.clusterName, err)
	}
	slog.Info("registered cluster", "cluster", r.clusterName)
	return nil
}

// SetNodeID records the identity used for node registration.
func (r *Registry) SetNodeID(id string) {
	r.nodeID = id
}

// RegisterNode announces this node instance under its identity, carrying the
// bind address as payload. The znode is ephemeral: it disappears with the
// session, so a restarted node simply re-creates it.
func (r *Registry) RegisterNode(bindAddr string) error {
	if r.nodeID == "" {
		return fmt.Errorf("registry: node id is not set")
	}
	if err := r.waitConnected(connectedTimeout); err != nil {
		return err
	}

	nodesPath := r.clusterPath() + "/nodes"
	if err := r.ensurePath(nodesPath); err != nil {
		return fmt.Errorf("registry: ensure nodes path: %w", err)
	}

	nodePath := nodesPath + "/" + r.nodeID
	_, err := r.conn.Create(nodePath, []byte(bindAddr), zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
	if err != nil && err != zk.ErrNodeExists {
		return fmt.Errorf("registry: register node %s: %w", r.nodeID, err)
	}

	slog.Info("registered node", "node_id", r.nodeID, "addr", bindAddr)
	return nil
}

// Close tears down the registry session, releasing the ephemeral
// registration.
func (r *Registry) Close() {
	r.conn.Close()
}

func (r *Registry) clusterPath() string {
	return registryRoot + "/" + r.clusterName
}

func (r *Registry) ensurePath(path string) error {
	parts := strings.Split(path, "/")
	cur := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		cur = cur + "/" + p
		exists, _, err := r.conn.Exists(cur)
		if err != nil {
			return err
		}
		if !exists {
			_, err = r.conn.Create(cur, nil, 0, zk.WorldACL(zk.PermAll))
			if err != nil && err != zk.ErrNodeExists {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) waitConnected(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		st := r.conn.State()
		if st == zk.StateConnected || st == zk.StateHasSession {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("registry: not connected after %s, state=%v", timeout, st)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
