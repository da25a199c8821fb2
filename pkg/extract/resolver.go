package extract

import "fmt"

// Resolver marks references resolved or unresolved against the complete,
// immutable element set built in pass one. Unresolved references are
// retained and surfaced as diagnostics, never discarded: a citation to an
// element the document does not contain is a data-quality finding, not a
// parse failure.
type Resolver struct {
	set *ElementSet
}

// NewResolver creates a Resolver over a finished element set.
func NewResolver(set *ElementSet) *Resolver {
	return &Resolver{set: set}
}

// ResolveAll sets each reference's resolution flag and returns diagnostics
// for unresolved references and self-references. A self-reference is
// permitted, since a proposition may restate its own number in prose, but
// it is flagged for review rather than silently accepted.
func (r *Resolver) ResolveAll(refs []*Reference) []Diagnostic {
	var diags []Diagnostic

	for _, ref := range refs {
		ref.Resolved = r.set.Has(ref.Target)

		if ref.Target == ref.Source {
			diags = append(diags, Diagnostic{
				Kind:    DiagSelfReference,
				Source:  ref.Source.Key(),
				RawText: ref.RawText,
				Message: fmt.Sprintf("%s cites itself in its %s", ref.Source, ref.Segment),
			})
			continue
		}

		if !ref.Resolved {
			diags = append(diags, Diagnostic{
				Kind:    DiagUnresolvedReference,
				Source:  ref.Source.Key(),
				RawText: ref.RawText,
				Message: fmt.Sprintf("citation %q from %s matches no element (target %s)", ref.RawText, ref.Source, ref.Target),
			})
		}
	}

	return diags
}
