// Package extract provides structural parsing and reference detection for
// treatise texts organized into parts, definitions, axioms, and propositions.
package extract

import (
	"fmt"
	"strings"

	"github.com/coolbeans/ethica/pkg/numeral"
)

// Kind identifies the structural type of an element.
type Kind string

const (
	KindPart        Kind = "part"
	KindDefinition  Kind = "definition"
	KindAxiom       Kind = "axiom"
	KindProposition Kind = "proposition"
)

// Identity is the immutable composite key naming an element. Two elements
// with the same identity are the same logical node; it is the sole key used
// for reference resolution and graph upserts.
type Identity struct {
	Kind       Kind `json:"kind"`
	PartNumber int  `json:"part_number"`
	Number     int  `json:"number"`
}

// Key returns the deterministic identity key used for graph upserts,
// e.g. "definition_1_2".
func (id Identity) Key() string {
	return fmt.Sprintf("%s_%d_%d", id.Kind, id.PartNumber, id.Number)
}

// String returns a human-readable form of the identity for diagnostics,
// e.g. "Definition II (Part I)".
func (id Identity) String() string {
	num, err := numeral.ToNumeral(id.Number)
	if err != nil {
		num = fmt.Sprintf("%d", id.Number)
	}
	kind := titleKind(id.Kind)
	if id.Kind == KindPart {
		return kind + " " + num
	}
	part, err := numeral.ToNumeral(id.PartNumber)
	if err != nil {
		part = fmt.Sprintf("%d", id.PartNumber)
	}
	return fmt.Sprintf("%s %s (Part %s)", kind, num, part)
}

// titleKind capitalizes a kind for display ("definition" -> "Definition").
func titleKind(k Kind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Part represents a part of the treatise: its number and title/preamble text.
type Part struct {
	PartNumber int    `json:"part_number"`
	Text       string `json:"text"`
}

// Identity returns the part's composite key. A part's element number is its
// own part number.
func (p *Part) Identity() Identity {
	return Identity{Kind: KindPart, PartNumber: p.PartNumber, Number: p.PartNumber}
}

// Definition represents a numbered definition within a part.
type Definition struct {
	PartNumber int    `json:"part_number"`
	Number     int    `json:"number"`
	Text       string `json:"text"`
}

// Identity returns the definition's composite key.
func (d *Definition) Identity() Identity {
	return Identity{Kind: KindDefinition, PartNumber: d.PartNumber, Number: d.Number}
}

// Axiom represents a numbered axiom within a part.
type Axiom struct {
	PartNumber int    `json:"part_number"`
	Number     int    `json:"number"`
	Text       string `json:"text"`
}

// Identity returns the axiom's composite key.
func (a *Axiom) Identity() Identity {
	return Identity{Kind: KindAxiom, PartNumber: a.PartNumber, Number: a.Number}
}

// Proposition represents a numbered proposition within a part, together with
// its attached demonstration, scholium, and corollaries. Corollary order is
// significant: a corollary's position in the slice is its identity.
type Proposition struct {
	PartNumber    int      `json:"part_number"`
	Number        int      `json:"number"`
	Text          string   `json:"text"`
	Demonstration string   `json:"demonstration,omitempty"`
	Scholium      string   `json:"scholium,omitempty"`
	Corollaries   []string `json:"corollaries,omitempty"`
}

// Identity returns the proposition's composite key.
func (p *Proposition) Identity() Identity {
	return Identity{Kind: KindProposition, PartNumber: p.PartNumber, Number: p.Number}
}

// ElementSet is the complete set of elements built in pass one. It is
// append-only during building and consulted read-only by the resolver and
// the graph projection.
type ElementSet struct {
	Parts        map[int]*Part             `json:"parts"`
	Definitions  map[Identity]*Definition  `json:"-"`
	Axioms       map[Identity]*Axiom       `json:"-"`
	Propositions map[Identity]*Proposition `json:"-"`

	// Unassigned holds spans that could not be attached to any element
	// (e.g. a demonstration with no enclosing proposition). They are kept
	// so diagnostics can surface them, never silently dropped.
	Unassigned []Span `json:"unassigned,omitempty"`

	// order records element identities in declaration order so that
	// downstream output is deterministic.
	order []Identity
}

// NewElementSet creates an empty element set.
func NewElementSet() *ElementSet {
	return &ElementSet{
		Parts:        make(map[int]*Part),
		Definitions:  make(map[Identity]*Definition),
		Axioms:       make(map[Identity]*Axiom),
		Propositions: make(map[Identity]*Proposition),
	}
}

// Has reports whether an element with the given identity exists in the set.
func (s *ElementSet) Has(id Identity) bool {
	switch id.Kind {
	case KindPart:
		_, ok := s.Parts[id.PartNumber]
		return ok
	case KindDefinition:
		_, ok := s.Definitions[id]
		return ok
	case KindAxiom:
		_, ok := s.Axioms[id]
		return ok
	case KindProposition:
		_, ok := s.Propositions[id]
		return ok
	}
	return false
}

// Order returns element identities in declaration order.
func (s *ElementSet) Order() []Identity {
	return s.order
}

// Statistics contains element counts for a parsed treatise.
type Statistics struct {
	Parts        int `json:"parts"`
	Definitions  int `json:"definitions"`
	Axioms       int `json:"axioms"`
	Propositions int `json:"propositions"`
	Corollaries  int `json:"corollaries"`
	Unassigned   int `json:"unassigned"`
}

// Statistics returns element counts for the set.
func (s *ElementSet) Statistics() Statistics {
	stats := Statistics{
		Parts:        len(s.Parts),
		Definitions:  len(s.Definitions),
		Axioms:       len(s.Axioms),
		Propositions: len(s.Propositions),
		Unassigned:   len(s.Unassigned),
	}
	for _, prop := range s.Propositions {
		stats.Corollaries += len(prop.Corollaries)
	}
	return stats
}
