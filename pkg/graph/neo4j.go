package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// nodeLabels and edgeTypes are the projection's fixed vocabulary. Labels
// and relationship types cannot be query parameters in Cypher, so they are
// interpolated, but only after a membership check against these sets.
var nodeLabels = map[string]bool{
	"Part":          true,
	"Definition":    true,
	"Axiom":         true,
	"Proposition":   true,
	"Demonstration": true,
	"Scholium":      true,
	"Corollary":     true,
}

var edgeTypes = map[string]bool{
	EdgeContains:   true,
	EdgeHas:        true,
	EdgeReferences: true,
}

// Neo4jStore persists the element graph in a Neo4j database using
// MERGE-based upserts keyed by identity.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	log    *zap.Logger
}

// NewNeo4jStore connects to a Neo4j database and verifies connectivity.
func NewNeo4jStore(ctx context.Context, uri, username, password string, log *zap.Logger) (*Neo4jStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	log.Info("connected to neo4j", zap.String("uri", uri))
	return &Neo4jStore{driver: driver, log: log}, nil
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Setup creates the uniqueness constraints and lookup indexes the
// projection relies on. Safe to run repeatedly.
func (s *Neo4jStore) Setup(ctx context.Context) error {
	queries := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (p:Part) REQUIRE p.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Definition) REQUIRE d.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (a:Axiom) REQUIRE a.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (p:Proposition) REQUIRE p.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Demonstration) REQUIRE d.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (s:Scholium) REQUIRE s.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Corollary) REQUIRE c.id IS UNIQUE",
		"CREATE INDEX IF NOT EXISTS FOR (p:Part) ON (p.part_number)",
		"CREATE INDEX IF NOT EXISTS FOR (d:Definition) ON (d.part_number, d.number)",
		"CREATE INDEX IF NOT EXISTS FOR (a:Axiom) ON (a.part_number, a.number)",
		"CREATE INDEX IF NOT EXISTS FOR (p:Proposition) ON (p.part_number, p.number)",
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, query := range queries {
		if _, err := session.Run(ctx, query, nil); err != nil {
			return fmt.Errorf("setup schema: %w", err)
		}
	}

	s.log.Info("neo4j schema ready", zap.Int("statements", len(queries)))
	return nil
}

// UpsertNode merges a single node by identity key.
func (s *Neo4jStore) UpsertNode(ctx context.Context, n NodeUpsert) error {
	query, params, err := nodeUpsertQuery(n)
	if err != nil {
		return err
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, query, params); err != nil {
		return fmt.Errorf("upsert node %s: %w", n.Key, err)
	}
	return nil
}

// UpsertEdge merges a single edge between two nodes named by identity key.
func (s *Neo4jStore) UpsertEdge(ctx context.Context, e EdgeUpsert) error {
	query, params, err := edgeUpsertQuery(e)
	if err != nil {
		return err
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, query, params); err != nil {
		return fmt.Errorf("upsert edge %s -[%s]-> %s: %w", e.FromKey, e.Type, e.ToKey, err)
	}
	return nil
}

// ApplyBatch writes the whole batch inside one managed write transaction,
// so a projection run either fully lands or is fully rolled back.
func (s *Neo4jStore) ApplyBatch(ctx context.Context, b Batch) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, n := range b.Nodes {
			query, params, err := nodeUpsertQuery(n)
			if err != nil {
				return nil, err
			}
			if _, err := tx.Run(ctx, query, params); err != nil {
				return nil, fmt.Errorf("upsert node %s: %w", n.Key, err)
			}
		}
		for _, e := range b.Edges {
			query, params, err := edgeUpsertQuery(e)
			if err != nil {
				return nil, err
			}
			if _, err := tx.Run(ctx, query, params); err != nil {
				return nil, fmt.Errorf("upsert edge %s -[%s]-> %s: %w", e.FromKey, e.Type, e.ToKey, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}

	s.log.Info("batch applied",
		zap.Int("nodes", len(b.Nodes)),
		zap.Int("edges", len(b.Edges)))
	return nil
}

// NodeCounts returns node counts grouped by label.
func (s *Neo4jStore) NodeCounts(ctx context.Context) (map[string]int64, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		"MATCH (n) RETURN labels(n)[0] AS label, count(*) AS count", nil)
	if err != nil {
		return nil, fmt.Errorf("count nodes: %w", err)
	}

	counts := make(map[string]int64)
	for result.Next(ctx) {
		record := result.Record()
		label, _ := record.Get("label")
		count, _ := record.Get("count")
		if name, ok := label.(string); ok {
			counts[name], _ = count.(int64)
		}
	}
	return counts, result.Err()
}

// EdgeCounts returns relationship counts grouped by type.
func (s *Neo4jStore) EdgeCounts(ctx context.Context) (map[string]int64, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		"MATCH ()-[r]->() RETURN type(r) AS type, count(*) AS count", nil)
	if err != nil {
		return nil, fmt.Errorf("count edges: %w", err)
	}

	counts := make(map[string]int64)
	for result.Next(ctx) {
		record := result.Record()
		edgeType, _ := record.Get("type")
		count, _ := record.Get("count")
		if name, ok := edgeType.(string); ok {
			counts[name], _ = count.(int64)
		}
	}
	return counts, result.Err()
}

func nodeUpsertQuery(n NodeUpsert) (string, map[string]any, error) {
	if !nodeLabels[n.Label] {
		return "", nil, fmt.Errorf("unknown node label %q", n.Label)
	}

	query := fmt.Sprintf("MERGE (n:%s {id: $id}) SET n += $props", n.Label)
	params := map[string]any{
		"id":    n.Key,
		"props": n.Properties,
	}
	return query, params, nil
}

func edgeUpsertQuery(e EdgeUpsert) (string, map[string]any, error) {
	if !edgeTypes[e.Type] {
		return "", nil, fmt.Errorf("unknown edge type %q", e.Type)
	}

	query := fmt.Sprintf(`
		MATCH (a {id: $from})
		MATCH (b {id: $to})
		MERGE (a)-[:%s]->(b)`, e.Type)
	params := map[string]any{
		"from": e.FromKey,
		"to":   e.ToKey,
	}
	return query, params, nil
}
