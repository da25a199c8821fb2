package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory Store with idempotent upserts. It backs tests
// and dry runs, and doubles as the JSON export surface: the accumulated
// nodes and edges are exactly what a networked store would receive.
type MemStore struct {
	mu    sync.RWMutex
	nodes map[string]NodeUpsert
	edges map[string]EdgeUpsert
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		nodes: make(map[string]NodeUpsert),
		edges: make(map[string]EdgeUpsert),
	}
}

// UpsertNode creates or replaces a node keyed by its identity key.
func (m *MemStore) UpsertNode(ctx context.Context, n NodeUpsert) error {
	if n.Key == "" {
		return fmt.Errorf("node key cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[n.Key] = n
	return nil
}

// UpsertEdge creates an edge keyed by (type, from, to). Re-upserting an
// existing edge is a no-op.
func (m *MemStore) UpsertEdge(ctx context.Context, e EdgeUpsert) error {
	if e.FromKey == "" || e.ToKey == "" || e.Type == "" {
		return fmt.Errorf("edge components cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[edgeKey(e)] = e
	return nil
}

// ApplyBatch applies every upsert in the batch. The in-memory store has no
// real transaction; idempotence makes a partial retry safe anyway.
func (m *MemStore) ApplyBatch(ctx context.Context, b Batch) error {
	for _, n := range b.Nodes {
		if err := m.UpsertNode(ctx, n); err != nil {
			return err
		}
	}
	for _, e := range b.Edges {
		if err := m.UpsertEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// NodeCount returns the number of distinct nodes.
func (m *MemStore) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// EdgeCount returns the number of distinct edges.
func (m *MemStore) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}

// Node returns the node stored under a key, if any.
func (m *MemStore) Node(key string) (NodeUpsert, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[key]
	return n, ok
}

// EdgesFrom returns the edges leaving a node, sorted for determinism.
func (m *MemStore) EdgesFrom(key string) []EdgeUpsert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []EdgeUpsert
	for _, e := range m.edges {
		if e.FromKey == key {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ToKey < out[j].ToKey
	})
	return out
}

// CountsByLabel returns node counts grouped by label.
func (m *MemStore) CountsByLabel() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, n := range m.nodes {
		counts[n.Label]++
	}
	return counts
}

// Export returns the store contents as a deterministic batch, suitable for
// JSON output.
func (m *MemStore) Export() Batch {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b Batch
	for _, n := range m.nodes {
		b.Nodes = append(b.Nodes, n)
	}
	for _, e := range m.edges {
		b.Edges = append(b.Edges, e)
	}
	sort.Slice(b.Nodes, func(i, j int) bool { return b.Nodes[i].Key < b.Nodes[j].Key })
	sort.Slice(b.Edges, func(i, j int) bool { return edgeKey(b.Edges[i]) < edgeKey(b.Edges[j]) })
	return b
}

func edgeKey(e EdgeUpsert) string {
	return e.Type + "|" + e.FromKey + "|" + e.ToKey
}
