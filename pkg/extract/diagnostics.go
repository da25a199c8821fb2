package extract

import (
	"fmt"
	"sort"
	"strings"
)

// DiagnosticKind classifies a non-fatal parse finding.
type DiagnosticKind string

const (
	// DiagMalformedNumeral: a marker or citation carried a numeral token
	// that could not be decoded. Only that marker/citation is abandoned.
	DiagMalformedNumeral DiagnosticKind = "malformed_numeral"

	// DiagStructuralError: a marker was encountered in a state where it is
	// not legal (e.g. DEMONSTRATION outside any proposition). The span is
	// degraded to continuation text of the previous block.
	DiagStructuralError DiagnosticKind = "structural_error"

	// DiagMissingPartContext: a definition, axiom, or proposition appeared
	// before any PART marker. The element lands in the synthetic part-0
	// bucket.
	DiagMissingPartContext DiagnosticKind = "missing_part_context"

	// DiagMissingPropositionContext: a demonstration, scholium, or
	// corollary span reached the builder with no current proposition.
	DiagMissingPropositionContext DiagnosticKind = "missing_proposition_context"

	// DiagDuplicateElement: two elements of the same kind share an
	// identity. The first occurrence wins; the duplicate is recorded here.
	DiagDuplicateElement DiagnosticKind = "duplicate_element"

	// DiagMissingPart: an element's part number names a part the document
	// never declared (containment integrity failure).
	DiagMissingPart DiagnosticKind = "missing_part"

	// DiagUnresolvedReference: a citation's target identity matches no
	// element in the final set.
	DiagUnresolvedReference DiagnosticKind = "unresolved_reference"

	// DiagSelfReference: a citation's target identity equals its source.
	// Surfaced for review, not treated as an error.
	DiagSelfReference DiagnosticKind = "self_reference"
)

// Diagnostic records a non-fatal finding surfaced alongside the parse
// result, carrying enough context for human review.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Source  string         `json:"source,omitempty"` // identity key of the owning element, when known
	RawText string         `json:"raw_text,omitempty"`
	Line    int            `json:"line,omitempty"`
	Message string         `json:"message"`
}

// String returns a single-line rendering of the diagnostic.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	if d.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", d.Line)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	if d.Source != "" {
		b.WriteString(" [source: " + d.Source + "]")
	}
	return b.String()
}

// Report summarizes a slice of diagnostics for display.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// CountByKind returns the number of diagnostics per kind.
func (r Report) CountByKind() map[DiagnosticKind]int {
	counts := make(map[DiagnosticKind]int)
	for _, d := range r.Diagnostics {
		counts[d.Kind]++
	}
	return counts
}

// String renders the report with per-kind counts followed by each finding.
func (r Report) String() string {
	if len(r.Diagnostics) == 0 {
		return "no diagnostics"
	}

	counts := r.CountByKind()
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	var b strings.Builder
	fmt.Fprintf(&b, "%d diagnostics:\n", len(r.Diagnostics))
	for _, kind := range kinds {
		fmt.Fprintf(&b, "  %s: %d\n", kind, counts[DiagnosticKind(kind)])
	}
	for _, d := range r.Diagnostics {
		b.WriteString("  - " + d.String() + "\n")
	}
	return b.String()
}
