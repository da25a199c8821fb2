// Package graph projects a parsed treatise into an idempotent batch of
// node and edge upserts and applies it to a graph store. Any compliant
// store (embedded or networked) can implement the Store interface; upserts
// are keyed by element identity, so re-applying the same batch never
// duplicates nodes or edges.
package graph

import (
	"context"
	"fmt"
)

// Edge types produced by the projection.
const (
	EdgeContains   = "CONTAINS"   // Part -> member
	EdgeHas        = "HAS"        // Proposition -> demonstration/scholium/corollary
	EdgeReferences = "REFERENCES" // citing element -> cited element
)

// NodeUpsert is one idempotent create-or-update of a node, keyed by its
// identity key.
type NodeUpsert struct {
	Label      string         `json:"label"`
	Key        string         `json:"key"`
	Properties map[string]any `json:"properties,omitempty"`
}

// EdgeUpsert is one idempotent create-or-update of an edge between two
// nodes named by identity key.
type EdgeUpsert struct {
	Type    string `json:"type"`
	FromKey string `json:"from_key"`
	ToKey   string `json:"to_key"`
}

// Batch is the full upsert sequence produced by one projection run.
// Applying it twice leaves the store unchanged after the first time.
type Batch struct {
	Nodes []NodeUpsert `json:"nodes"`
	Edges []EdgeUpsert `json:"edges"`
}

// Store is the capability interface a graph store implements.
type Store interface {
	UpsertNode(ctx context.Context, n NodeUpsert) error
	UpsertEdge(ctx context.Context, e EdgeUpsert) error
}

// BatchStore is implemented by stores that can apply a whole batch under a
// single transactional scope, so a projection run either fully lands or is
// fully rolled back.
type BatchStore interface {
	Store
	ApplyBatch(ctx context.Context, b Batch) error
}

// Apply writes a batch to a store, preferring the transactional path when
// the store offers one. Partial application through the fallback path is a
// tolerable degraded state: the batch is idempotent, so a retry repairs it.
func Apply(ctx context.Context, s Store, b Batch) error {
	if bs, ok := s.(BatchStore); ok {
		return bs.ApplyBatch(ctx, b)
	}

	for _, n := range b.Nodes {
		if err := s.UpsertNode(ctx, n); err != nil {
			return fmt.Errorf("upsert node %s: %w", n.Key, err)
		}
	}
	for _, e := range b.Edges {
		if err := s.UpsertEdge(ctx, e); err != nil {
			return fmt.Errorf("upsert edge %s -[%s]-> %s: %w", e.FromKey, e.Type, e.ToKey, err)
		}
	}
	return nil
}
