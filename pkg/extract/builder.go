package extract

import (
	"fmt"
	"sort"
)

// Builder assembles typed element records from a scanned span sequence.
// It tracks the current part and current proposition so that every element
// is created under the right containment context, and accumulates
// diagnostics instead of failing: the caller always gets a best-effort
// element set plus a list of quality findings.
type Builder struct {
	set         *ElementSet
	currentPart int
	currentProp *Proposition
	diagnostics []Diagnostic
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{set: NewElementSet()}
}

// Build consumes the span sequence in order and returns the element set and
// all accumulated diagnostics. Duplicate identities keep the first
// occurrence; spans with no valid enclosing context land in the synthetic
// part-0 bucket or the unassigned list, flagged either way.
func (b *Builder) Build(spans []Span) (*ElementSet, []Diagnostic) {
	for _, span := range spans {
		switch span.Marker {
		case MarkerPart:
			b.buildPart(span)
		case MarkerDefinition:
			b.buildDefinition(span)
		case MarkerAxiom:
			b.buildAxiom(span)
		case MarkerProposition:
			b.buildProposition(span)
		case MarkerDemonstration:
			b.attachDemonstration(span)
		case MarkerScholium:
			b.attachScholium(span)
		case MarkerCorollary:
			b.appendCorollary(span)
		}
	}

	b.checkContainment()
	return b.set, b.diagnostics
}

func (b *Builder) buildPart(span Span) {
	// A part marker always resets context, even when it is a duplicate:
	// the text that follows belongs to that part either way.
	b.currentPart = span.Number
	b.currentProp = nil

	if existing, ok := b.set.Parts[span.Number]; ok {
		b.diagnostics = append(b.diagnostics, Diagnostic{
			Kind:    DiagDuplicateElement,
			Source:  existing.Identity().Key(),
			RawText: span.Raw,
			Line:    span.Line,
			Message: fmt.Sprintf("duplicate %s, keeping first occurrence", existing.Identity()),
		})
		return
	}

	part := &Part{PartNumber: span.Number, Text: span.Text}
	b.set.Parts[span.Number] = part
	b.set.order = append(b.set.order, part.Identity())
}

func (b *Builder) buildDefinition(span Span) {
	b.currentProp = nil
	def := &Definition{PartNumber: b.partContext(span), Number: span.Number, Text: span.Text}

	if existing, ok := b.set.Definitions[def.Identity()]; ok {
		b.recordDuplicate(existing.Identity(), span)
		return
	}
	b.set.Definitions[def.Identity()] = def
	b.set.order = append(b.set.order, def.Identity())
}

func (b *Builder) buildAxiom(span Span) {
	b.currentProp = nil
	axiom := &Axiom{PartNumber: b.partContext(span), Number: span.Number, Text: span.Text}

	if existing, ok := b.set.Axioms[axiom.Identity()]; ok {
		b.recordDuplicate(existing.Identity(), span)
		return
	}
	b.set.Axioms[axiom.Identity()] = axiom
	b.set.order = append(b.set.order, axiom.Identity())
}

func (b *Builder) buildProposition(span Span) {
	prop := &Proposition{PartNumber: b.partContext(span), Number: span.Number, Text: span.Text}

	if existing, ok := b.set.Propositions[prop.Identity()]; ok {
		b.recordDuplicate(existing.Identity(), span)
		// Later attachments still belong to the surviving record.
		b.currentProp = existing
		return
	}
	b.set.Propositions[prop.Identity()] = prop
	b.set.order = append(b.set.order, prop.Identity())
	b.currentProp = prop
}

func (b *Builder) attachDemonstration(span Span) {
	prop, ok := b.requireProposition(span)
	if !ok {
		return
	}
	if prop.Demonstration != "" {
		b.recordDuplicate(prop.Identity(), span)
		return
	}
	prop.Demonstration = span.Text
}

func (b *Builder) attachScholium(span Span) {
	prop, ok := b.requireProposition(span)
	if !ok {
		return
	}
	if prop.Scholium != "" {
		b.recordDuplicate(prop.Identity(), span)
		return
	}
	prop.Scholium = span.Text
}

func (b *Builder) appendCorollary(span Span) {
	prop, ok := b.requireProposition(span)
	if !ok {
		return
	}
	prop.Corollaries = append(prop.Corollaries, span.Text)
}

// partContext returns the current part number, flagging the span when no
// part is active. Elements without a part land in the synthetic part-0
// bucket so the rest of the parse is unaffected; the containment check
// turns that bucket into an integrity finding at the end.
func (b *Builder) partContext(span Span) int {
	if b.currentPart == 0 {
		b.diagnostics = append(b.diagnostics, Diagnostic{
			Kind:    DiagMissingPartContext,
			RawText: span.Raw,
			Line:    span.Line,
			Message: fmt.Sprintf("%s %q appears before any part marker", span.Marker, span.Raw),
		})
	}
	return b.currentPart
}

// requireProposition returns the current proposition, or records the span
// as unassigned when none is active. The scanner already degrades illegal
// markers, so this path is a defensive re-check.
func (b *Builder) requireProposition(span Span) (*Proposition, bool) {
	if b.currentProp == nil {
		b.diagnostics = append(b.diagnostics, Diagnostic{
			Kind:    DiagMissingPropositionContext,
			RawText: span.Raw,
			Line:    span.Line,
			Message: fmt.Sprintf("%s span has no enclosing proposition", span.Marker),
		})
		b.set.Unassigned = append(b.set.Unassigned, span)
		return nil, false
	}
	return b.currentProp, true
}

func (b *Builder) recordDuplicate(id Identity, span Span) {
	b.diagnostics = append(b.diagnostics, Diagnostic{
		Kind:    DiagDuplicateElement,
		Source:  id.Key(),
		RawText: span.Raw,
		Line:    span.Line,
		Message: fmt.Sprintf("duplicate %s for %s, keeping first occurrence", span.Marker, id),
	})
}

// checkContainment verifies that every element's part number names a part
// the document actually declared. A missing part is an integrity finding,
// not a silent drop.
func (b *Builder) checkContainment() {
	missing := make(map[int][]Identity)
	for _, id := range b.set.order {
		if id.Kind == KindPart {
			continue
		}
		if _, ok := b.set.Parts[id.PartNumber]; !ok {
			missing[id.PartNumber] = append(missing[id.PartNumber], id)
		}
	}

	partNumbers := make([]int, 0, len(missing))
	for n := range missing {
		partNumbers = append(partNumbers, n)
	}
	sort.Ints(partNumbers)

	for _, n := range partNumbers {
		for _, id := range missing[n] {
			msg := fmt.Sprintf("part %d containing %s was never declared", n, id)
			if n == 0 {
				msg = fmt.Sprintf("%s has no enclosing part", id)
			}
			b.diagnostics = append(b.diagnostics, Diagnostic{
				Kind:    DiagMissingPart,
				Source:  id.Key(),
				Message: msg,
			})
		}
	}
}
