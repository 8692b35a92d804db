package placement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.etcd.io/etcd/raft/v3"
	"go.etcd.io/etcd/raft/v3/raftpb"
)

const (
	tickInterval    = 100 * time.Millisecond
	electionTick    = 10
	heartbeatTick   = 1
	maxSizePerMsg   = 1024 * 1024
	maxInflightMsgs = 256
)

// Membership is a placement proposal: node id and the address it serves on.
type Membership struct {
	ID   uint64 `json:"id"`
	Addr string `json:"addr"`
}

// Engine is the raft-backed cluster-membership engine. It starts as a
// single-voter group, serves raft messages over HTTP on the placement
// address, and applies committed membership proposals to its member table.
type Engine struct {
	id        uint64
	addr      string
	node      raft.Node
	storage   *raft.MemoryStorage
	transport *transport

	membersMu sync.RWMutex
	members   map[uint64]string

	httpServer *http.Server
}

// NewEngine creates the engine with the given raft id, bound to addr.
func NewEngine(id uint64, addr string) *Engine {
	storage := raft.NewMemoryStorage()
	cfg := &raft.Config{
		ID:              id,
		ElectionTick:    electionTick,
		HeartbeatTick:   heartbeatTick,
		Storage:         storage,
		MaxSizePerMsg:   maxSizePerMsg,
		MaxInflightMsgs: maxInflightMsgs,
	}

	return &Engine{
		id:        id,
		addr:      addr,
		node:      raft.StartNode(cfg, []raft.Peer{{ID: id}}),
		storage:   storage,
		transport: newTransport(),
		members:   make(map[uint64]string),
	}
}

// Run serves the raft loop and the placement transport until ctx is
// cancelled or the loop fails.
func (e *Engine) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(raftEndpoint, e.handleRaft)
	e.httpServer = &http.Server{
		Addr:              e.addr,
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}

	go func() {
		if err := e.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("placement transport error", "error", err)
		}
	}()

	slog.Info("placement engine started", "addr", e.addr, "id", e.id)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	defer e.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.node.Tick()
		case rd := <-e.node.Ready():
			if err := e.handleReady(rd); err != nil {
				return fmt.Errorf("placement engine: %w", err)
			}
		}
	}
}

func (e *Engine) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = e.httpServer.Shutdown(shutdownCtx)
	e.node.Stop()
	slog.Info("placement engine stopped", "id", e.id)
}

func (e *Engine) handleReady(rd raft.Ready) error {
	if err := e.storage.Append(rd.Entries); err != nil {
		return fmt.Errorf("append entries: %w", err)
	}

	e.sendMessages(rd.Messages)

	for _, entry := range rd.CommittedEntries {
		switch entry.Type {
		case raftpb.EntryNormal:
			if err := e.applyEntry(entry); err != nil {
				return fmt.Errorf("apply entry: %w", err)
			}
		case raftpb.EntryConfChange:
			var cc raftpb.ConfChange
			if err := cc.Unmarshal(entry.Data); err != nil {
				return fmt.Errorf("unmarshal conf change: %w", err)
			}
			e.node.ApplyConfChange(cc)
		}
	}

	e.node.Advance()
	return nil
}

func (e *Engine) sendMessages(msgs []raftpb.Message) {
	for _, msg := range msgs {
		if msg.To == e.id {
			continue
		}

		go func(m raftpb.Message) {
			if err := e.transport.send(m); err != nil {
				slog.Error("failed to send placement message",
					"from", m.From,
					"to", m.To,
					"type", m.Type,
					"error", err)
			}
		}(msg)
	}
}

func (e *Engine) applyEntry(entry raftpb.Entry) error {
	if len(entry.Data) == 0 {
		return nil
	}

	var m Membership
	if err := json.Unmarshal(entry.Data, &m); err != nil {
		return fmt.Errorf("unmarshal membership: %w", err)
	}

	e.membersMu.Lock()
	e.members[m.ID] = m.Addr
	e.membersMu.Unlock()

	e.transport.addPeer(m.ID, m.Addr)
	slog.Info("placement member applied", "member_id", m.ID, "addr", m.Addr)
	return nil
}

// Join proposes a membership entry and returns once it is submitted; the
// entry takes effect when the group commits it.
func (e *Engine) Join(ctx context.Context, id uint64, addr string) error {
	data, err := json.Marshal(Membership{ID: id, Addr: addr})
	if err != nil {
		return fmt.Errorf("marshal membership: %w", err)
	}
	if err := e.node.Propose(ctx, data); err != nil {
		return fmt.Errorf("propose membership: %w", err)
	}
	return nil
}

// Members returns a copy of the current member table.
func (e *Engine) Members() map[uint64]string {
	e.membersMu.RLock()
	defer e.membersMu.RUnlock()

	members := make(map[uint64]string, len(e.members))
	for id, addr := range e.members {
		members[id] = addr
	}
	return members
}

// IsLeader reports whether this node currently leads the placement group.
func (e *Engine) IsLeader() bool {
	return e.node.Status().Lead == e.id
}

func (e *Engine) handleRaft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg raftpb.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := e.node.Step(r.Context(), msg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
