package extract

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/coolbeans/ethica/pkg/numeral"
)

// MarkerKind identifies the section marker that opened a span.
type MarkerKind string

const (
	MarkerPart          MarkerKind = "part"
	MarkerDefinition    MarkerKind = "definition"
	MarkerAxiom         MarkerKind = "axiom"
	MarkerProposition   MarkerKind = "proposition"
	MarkerDemonstration MarkerKind = "demonstration"
	MarkerScholium      MarkerKind = "scholium"
	MarkerCorollary     MarkerKind = "corollary"
)

// scanState tracks which structural block the scanner is currently inside.
type scanState int

const (
	stateOutsideAnyPart scanState = iota
	stateInPart
	stateInDefinitionBlock
	stateInAxiomBlock
	stateInPropositionBlock
	stateInDemonstration
	stateInScholium
	stateInCorollary
)

// propositionOpen reports whether a proposition is the current enclosing
// element, which is the only context where demonstration, scholium, and
// corollary markers are legal.
func (s scanState) propositionOpen() bool {
	switch s {
	case stateInPropositionBlock, stateInDemonstration, stateInScholium, stateInCorollary:
		return true
	}
	return false
}

// Span is one scanned section: the marker that opened it, its decoded
// ordinal (zero for demonstration/scholium/corollary spans, which carry no
// numbering of their own), and the text accumulated until the next marker.
type Span struct {
	Marker MarkerKind `json:"marker"`
	Number int        `json:"number,omitempty"`
	Text   string     `json:"text"`
	Line   int        `json:"line"` // 1-based line of the marker
	Raw    string     `json:"raw"`  // the matched marker line
}

// Scanner walks a linearized treatise text in a single forward pass and
// emits typed section spans. It never looks ahead beyond the next marker.
type Scanner struct {
	partPattern          *regexp.Regexp
	definitionPattern    *regexp.Regexp
	axiomPattern         *regexp.Regexp
	propositionPattern   *regexp.Regexp
	demonstrationPattern *regexp.Regexp
	scholiumPattern      *regexp.Regexp
	corollaryPattern     *regexp.Regexp
}

// NewScanner creates a Scanner with the default marker vocabulary.
// Markers are recognized case-insensitively at the start of a line; the
// numeral group is permissive so that malformed numerals surface as
// diagnostics instead of being skipped over silently.
func NewScanner() *Scanner {
	return &Scanner{
		partPattern:        regexp.MustCompile(`(?i)^\s*PART\s+([A-Z]+)[.:]?\s*$`),
		definitionPattern:  regexp.MustCompile(`(?i)^\s*DEFINITION\s+([A-Z]+)[.:]?\s*$`),
		axiomPattern:       regexp.MustCompile(`(?i)^\s*AXIOM\s+([A-Z]+)[.:]?\s*$`),
		propositionPattern: regexp.MustCompile(`(?i)^\s*PROPOSITION\s+([A-Z]+)[.:]?\s*$`),
		// Demonstration/scholium/corollary markers carry no independent
		// numbering; a trailing numeral on COROLLARY is tolerated since a
		// corollary's identity is its arrival position.
		demonstrationPattern: regexp.MustCompile(`(?i)^\s*DEMONSTRATION[.:]?\s*$`),
		scholiumPattern:      regexp.MustCompile(`(?i)^\s*SCHOLIUM[.:]?\s*$`),
		corollaryPattern:     regexp.MustCompile(`(?i)^\s*COROLLARY(?:\s+[A-Z]+)?[.:]?\s*$`),
	}
}

// Scan reads the text stream and returns the span sequence plus any
// diagnostics accumulated along the way. The only error it returns is a
// failure of the underlying reader, which is fatal and propagates
// unchanged.
func (s *Scanner) Scan(r io.Reader) ([]Span, []Diagnostic, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading input: %w", err)
	}

	spans, diags := s.ScanLines(lines)
	return spans, diags, nil
}

// ScanLines scans an already-split line sequence. Text before the first
// marker (titles, surviving page headers) is tolerated as unmatched text
// and dropped.
func (s *Scanner) ScanLines(lines []string) ([]Span, []Diagnostic) {
	var (
		spans   []Span
		diags   []Diagnostic
		state   = stateOutsideAnyPart
		current *Span
		text    strings.Builder
	)

	closeCurrent := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(text.String())
		spans = append(spans, *current)
		current = nil
		text.Reset()
	}

	open := func(span Span, next scanState) {
		closeCurrent()
		current = &span
		state = next
	}

	appendText := func(line string) {
		if current == nil {
			return // preamble text before the first marker
		}
		text.WriteString(line)
		text.WriteString("\n")
	}

	for i, line := range lines {
		lineNo := i + 1

		if kind, numTok, ok := s.matchMarker(line); ok {
			switch kind {
			case MarkerPart, MarkerDefinition, MarkerAxiom, MarkerProposition:
				n, err := numeral.ToInteger(numTok)
				if err != nil {
					// Abandon only this marker; the line stays with the
					// previous block as continuation text.
					diags = append(diags, Diagnostic{
						Kind:    DiagMalformedNumeral,
						RawText: strings.TrimSpace(line),
						Line:    lineNo,
						Message: fmt.Sprintf("cannot decode numeral %q in marker %q: %v", numTok, strings.TrimSpace(line), err),
					})
					appendText(line)
					continue
				}
				open(Span{Marker: kind, Number: n, Line: lineNo, Raw: strings.TrimSpace(line)}, markerState(kind))

			case MarkerDemonstration, MarkerScholium, MarkerCorollary:
				if !state.propositionOpen() {
					// Soft error: degrade to continuation text rather than
					// aborting the scan.
					diags = append(diags, Diagnostic{
						Kind:    DiagStructuralError,
						RawText: strings.TrimSpace(line),
						Line:    lineNo,
						Message: fmt.Sprintf("%s marker outside any proposition", kind),
					})
					appendText(line)
					continue
				}
				open(Span{Marker: kind, Line: lineNo, Raw: strings.TrimSpace(line)}, markerState(kind))
			}
			continue
		}

		appendText(line)
	}

	closeCurrent()
	return spans, diags
}

// matchMarker tests a line against the marker vocabulary and returns the
// marker kind and raw numeral token when one matches.
func (s *Scanner) matchMarker(line string) (MarkerKind, string, bool) {
	if m := s.partPattern.FindStringSubmatch(line); m != nil {
		return MarkerPart, m[1], true
	}
	if m := s.definitionPattern.FindStringSubmatch(line); m != nil {
		return MarkerDefinition, m[1], true
	}
	if m := s.axiomPattern.FindStringSubmatch(line); m != nil {
		return MarkerAxiom, m[1], true
	}
	if m := s.propositionPattern.FindStringSubmatch(line); m != nil {
		return MarkerProposition, m[1], true
	}
	if s.demonstrationPattern.MatchString(line) {
		return MarkerDemonstration, "", true
	}
	if s.scholiumPattern.MatchString(line) {
		return MarkerScholium, "", true
	}
	if s.corollaryPattern.MatchString(line) {
		return MarkerCorollary, "", true
	}
	return "", "", false
}

// markerState returns the scanner state entered by a marker kind.
func markerState(kind MarkerKind) scanState {
	switch kind {
	case MarkerPart:
		return stateInPart
	case MarkerDefinition:
		return stateInDefinitionBlock
	case MarkerAxiom:
		return stateInAxiomBlock
	case MarkerProposition:
		return stateInPropositionBlock
	case MarkerDemonstration:
		return stateInDemonstration
	case MarkerScholium:
		return stateInScholium
	case MarkerCorollary:
		return stateInCorollary
	}
	return stateOutsideAnyPart
}
