package graph

import (
	"fmt"
	"strings"

	"github.com/coolbeans/ethica/pkg/extract"
)

// ProjectionStats counts what a projection produced.
type ProjectionStats struct {
	Nodes           int `json:"nodes"`
	ContainsEdges   int `json:"contains_edges"`
	HasEdges        int `json:"has_edges"`
	ReferenceEdges  int `json:"reference_edges"`
	UnresolvedRefs  int `json:"unresolved_refs"`
	SkippedContains int `json:"skipped_contains"` // members whose part was never declared
}

// Project maps a parse result into a deterministic upsert batch: one node
// per element and proposition sub-element, CONTAINS edges from parts to
// their members, HAS edges from propositions to their sub-elements, and
// REFERENCES edges for resolved references only. Unresolved references are
// never projected as edges; they are counted in the stats so the caller can
// surface them from the parse diagnostics.
func Project(result *extract.ParseResult) (Batch, ProjectionStats) {
	var (
		batch Batch
		stats ProjectionStats
	)
	set := result.Elements

	for _, id := range set.Order() {
		switch id.Kind {
		case extract.KindPart:
			part := set.Parts[id.PartNumber]
			batch.Nodes = append(batch.Nodes, NodeUpsert{
				Label: "Part",
				Key:   id.Key(),
				Properties: map[string]any{
					"part_number": part.PartNumber,
					"text":        part.Text,
				},
			})

		case extract.KindDefinition:
			def := set.Definitions[id]
			batch.Nodes = append(batch.Nodes, elementNode("Definition", id, def.PartNumber, def.Number, def.Text))
			stats.ContainsEdges += containEdge(&batch, set, id)

		case extract.KindAxiom:
			axiom := set.Axioms[id]
			batch.Nodes = append(batch.Nodes, elementNode("Axiom", id, axiom.PartNumber, axiom.Number, axiom.Text))
			stats.ContainsEdges += containEdge(&batch, set, id)

		case extract.KindProposition:
			prop := set.Propositions[id]
			batch.Nodes = append(batch.Nodes, elementNode("Proposition", id, prop.PartNumber, prop.Number, prop.Text))
			stats.ContainsEdges += containEdge(&batch, set, id)
			projectSubElements(&batch, &stats, id, prop)
		}
	}
	stats.SkippedContains = countSkippedContains(set)

	// REFERENCES edges for resolved references, deduplicated: the same
	// citation may appear several times in one element's text.
	seen := make(map[EdgeUpsert]bool)
	for _, ref := range result.References {
		if !ref.Resolved {
			stats.UnresolvedRefs++
			continue
		}
		edge := EdgeUpsert{Type: EdgeReferences, FromKey: ref.Source.Key(), ToKey: ref.Target.Key()}
		if seen[edge] {
			continue
		}
		seen[edge] = true
		batch.Edges = append(batch.Edges, edge)
		stats.ReferenceEdges++
	}

	stats.Nodes = len(batch.Nodes)
	for _, e := range batch.Edges {
		if e.Type == EdgeHas {
			stats.HasEdges++
		}
	}
	return batch, stats
}

// elementNode builds the node upsert shared by definitions, axioms, and
// propositions.
func elementNode(label string, id extract.Identity, partNumber, number int, text string) NodeUpsert {
	return NodeUpsert{
		Label: label,
		Key:   id.Key(),
		Properties: map[string]any{
			"part_number": partNumber,
			"number":      number,
			"text":        text,
		},
	}
}

// containEdge adds a CONTAINS edge from the element's part when that part
// exists; members of undeclared parts (including the synthetic part-0
// bucket) get no edge and are surfaced through the parse diagnostics.
func containEdge(batch *Batch, set *extract.ElementSet, id extract.Identity) int {
	part, ok := set.Parts[id.PartNumber]
	if !ok {
		return 0
	}
	batch.Edges = append(batch.Edges, EdgeUpsert{
		Type:    EdgeContains,
		FromKey: part.Identity().Key(),
		ToKey:   id.Key(),
	})
	return 1
}

// projectSubElements projects a proposition's demonstration, scholium, and
// corollaries as their own nodes attached with HAS edges. Sub-element keys
// append a suffix to the proposition key; a corollary's suffix carries its
// 1-based position, which is its identity.
func projectSubElements(batch *Batch, stats *ProjectionStats, id extract.Identity, prop *extract.Proposition) {
	propKey := id.Key()

	if prop.Demonstration != "" {
		key := propKey + "_demonstration"
		batch.Nodes = append(batch.Nodes, NodeUpsert{
			Label:      "Demonstration",
			Key:        key,
			Properties: map[string]any{"text": prop.Demonstration},
		})
		batch.Edges = append(batch.Edges, EdgeUpsert{Type: EdgeHas, FromKey: propKey, ToKey: key})
	}

	if prop.Scholium != "" {
		key := propKey + "_scholium"
		batch.Nodes = append(batch.Nodes, NodeUpsert{
			Label:      "Scholium",
			Key:        key,
			Properties: map[string]any{"text": prop.Scholium},
		})
		batch.Edges = append(batch.Edges, EdgeUpsert{Type: EdgeHas, FromKey: propKey, ToKey: key})
	}

	for i, text := range prop.Corollaries {
		key := fmt.Sprintf("%s_corollary_%d", propKey, i+1)
		batch.Nodes = append(batch.Nodes, NodeUpsert{
			Label:      "Corollary",
			Key:        key,
			Properties: map[string]any{"index": i + 1, "text": text},
		})
		batch.Edges = append(batch.Edges, EdgeUpsert{Type: EdgeHas, FromKey: propKey, ToKey: key})
	}
}

// countSkippedContains counts members whose declared part has no Part record.
func countSkippedContains(set *extract.ElementSet) int {
	var skipped int
	for _, id := range set.Order() {
		if id.Kind == extract.KindPart {
			continue
		}
		if _, ok := set.Parts[id.PartNumber]; !ok {
			skipped++
		}
	}
	return skipped
}

// String renders the stats in a fixed order for display.
func (s ProjectionStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "nodes: %d\n", s.Nodes)
	fmt.Fprintf(&b, "contains edges: %d\n", s.ContainsEdges)
	fmt.Fprintf(&b, "has edges: %d\n", s.HasEdges)
	fmt.Fprintf(&b, "reference edges: %d\n", s.ReferenceEdges)
	fmt.Fprintf(&b, "unresolved references: %d\n", s.UnresolvedRefs)
	if s.SkippedContains > 0 {
		fmt.Fprintf(&b, "members without a declared part: %d\n", s.SkippedContains)
	}
	return b.String()
}
