package extract

import (
	"bufio"
	"fmt"
	"io"
)

// ParseResult is the complete output of a parse: the element set, the
// references found in the second pass, and every diagnostic accumulated
// along the way. The caller always gets a best-effort graph plus a list of
// quality findings rather than an all-or-nothing failure.
type ParseResult struct {
	Elements    *ElementSet  `json:"elements"`
	References  []*Reference `json:"references"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Report returns the parse diagnostics as a displayable report.
func (p *ParseResult) Report() Report {
	return Report{Diagnostics: p.Diagnostics}
}

// Parse runs the full pipeline over a linearized treatise text: preprocess,
// scan, build, then a second pass that extracts and resolves citations
// against the complete element set. The only error returned is a failure
// of the underlying reader; every other condition becomes a diagnostic.
func Parse(r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return ParseLines(lines), nil
}

// ParseLines runs the pipeline over an already-split line sequence.
func ParseLines(lines []string) *ParseResult {
	lines = Preprocess(lines)

	// Pass one: scan markers and assemble elements.
	spans, diags := NewScanner().ScanLines(lines)
	set, buildDiags := NewBuilder().Build(spans)
	diags = append(diags, buildDiags...)

	// Pass two: the element set is complete and immutable from here on, so
	// forward citations resolve exactly like backward ones.
	refs, refDiags := NewReferenceExtractor().ExtractFromSet(set)
	diags = append(diags, refDiags...)
	diags = append(diags, NewResolver(set).ResolveAll(refs)...)

	return &ParseResult{
		Elements:    set,
		References:  refs,
		Diagnostics: diags,
	}
}
