package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coolbeans/ethica/pkg/numeral"
)

// Reference is a decoded citation from one element's text to another
// element. Its resolution flag is set in a second pass over the complete
// element set, so citations to elements declared later in the document
// (forward references) resolve the same way as backward ones.
type Reference struct {
	Source  Identity `json:"source"`
	Target  Identity `json:"target"`
	RawText string   `json:"raw_text"`

	// Segment names which text of the source element the citation was
	// found in: "text", "demonstration", "scholium", or "corollary_<i>".
	Segment string `json:"segment"`

	// Offset is the byte offset of the citation within its segment.
	Offset int `json:"offset"`

	// Resolved is true once an element matching the target identity exists
	// in the element set.
	Resolved bool `json:"resolved"`
}

// ReferenceExtractor detects citation patterns inside element text.
//
// Two shapes are recognized: a bare citation ("Definition II") implicitly
// scoped to the citing element's own part, and a qualified citation
// ("Part I, Definition II") scoped explicitly.
type ReferenceExtractor struct {
	qualifiedPattern *regexp.Regexp
	barePattern      *regexp.Regexp
}

// NewReferenceExtractor creates a ReferenceExtractor with the default
// citation vocabulary.
func NewReferenceExtractor() *ReferenceExtractor {
	return &ReferenceExtractor{
		// "Part I, Definition II" / "Part III, Proposition XI"
		qualifiedPattern: regexp.MustCompile(`(?i)\bPart\s+([IVXLCM]+),\s*(Definition|Axiom|Proposition)\s+([IVXLCM]+)\b`),
		// "Definition II" / "Axiom III" / "Proposition V"
		// Overlap with the qualified pattern is suppressed in extract().
		barePattern: regexp.MustCompile(`(?i)\b(Definition|Axiom|Proposition)\s+([IVXLCM]+)\b`),
	}
}

// ExtractFromSet scans every element's text, including demonstration,
// scholium, and corollary text, and returns the candidate references in
// declaration order. Citations whose numerals cannot be decoded are
// reported as diagnostics and skipped; nothing else is affected.
func (e *ReferenceExtractor) ExtractFromSet(set *ElementSet) ([]*Reference, []Diagnostic) {
	var (
		refs  []*Reference
		diags []Diagnostic
	)

	collect := func(source Identity, segment, text string) {
		r, d := e.extract(source, segment, text)
		refs = append(refs, r...)
		diags = append(diags, d...)
	}

	for _, id := range set.Order() {
		switch id.Kind {
		case KindPart:
			collect(id, "text", set.Parts[id.PartNumber].Text)
		case KindDefinition:
			collect(id, "text", set.Definitions[id].Text)
		case KindAxiom:
			collect(id, "text", set.Axioms[id].Text)
		case KindProposition:
			prop := set.Propositions[id]
			collect(id, "text", prop.Text)
			if prop.Demonstration != "" {
				collect(id, "demonstration", prop.Demonstration)
			}
			if prop.Scholium != "" {
				collect(id, "scholium", prop.Scholium)
			}
			for i, corollary := range prop.Corollaries {
				collect(id, fmt.Sprintf("corollary_%d", i+1), corollary)
			}
		}
	}

	return refs, diags
}

// extract finds all citations in a single text segment.
func (e *ReferenceExtractor) extract(source Identity, segment, text string) ([]*Reference, []Diagnostic) {
	var (
		refs  []*Reference
		diags []Diagnostic
	)

	badNumeral := func(raw, token string, err error) {
		diags = append(diags, Diagnostic{
			Kind:    DiagMalformedNumeral,
			Source:  source.Key(),
			RawText: raw,
			Message: fmt.Sprintf("cannot decode numeral %q in citation %q: %v", token, raw, err),
		})
	}

	// Qualified citations first: "Part I, Definition II".
	matches := e.qualifiedPattern.FindAllStringSubmatchIndex(text, -1)
	for _, match := range matches {
		raw := text[match[0]:match[1]]
		partTok := text[match[2]:match[3]]
		kindTok := text[match[4]:match[5]]
		numTok := text[match[6]:match[7]]

		partNum, err := numeral.ToInteger(partTok)
		if err != nil {
			badNumeral(raw, partTok, err)
			continue
		}
		num, err := numeral.ToInteger(numTok)
		if err != nil {
			badNumeral(raw, numTok, err)
			continue
		}

		refs = append(refs, &Reference{
			Source:  source,
			Target:  Identity{Kind: citationKind(kindTok), PartNumber: partNum, Number: num},
			RawText: raw,
			Segment: segment,
			Offset:  match[0],
		})
	}

	// Bare citations, implicitly scoped to the citing element's own part.
	// Skip matches inside a qualified citation already collected.
	matches = e.barePattern.FindAllStringSubmatchIndex(text, -1)
	for _, match := range matches {
		if isOverlapping(match[0], match[1], refs) {
			continue
		}

		raw := text[match[0]:match[1]]
		kindTok := text[match[2]:match[3]]
		numTok := text[match[4]:match[5]]

		num, err := numeral.ToInteger(numTok)
		if err != nil {
			badNumeral(raw, numTok, err)
			continue
		}

		refs = append(refs, &Reference{
			Source:  source,
			Target:  Identity{Kind: citationKind(kindTok), PartNumber: source.PartNumber, Number: num},
			RawText: raw,
			Segment: segment,
			Offset:  match[0],
		})
	}

	return refs, diags
}

// isOverlapping reports whether the [start,end) range overlaps any
// already-collected reference in the same segment scan.
func isOverlapping(start, end int, refs []*Reference) bool {
	for _, ref := range refs {
		refEnd := ref.Offset + len(ref.RawText)
		if start < refEnd && end > ref.Offset {
			return true
		}
	}
	return false
}

// citationKind maps a matched citation keyword to an element kind.
func citationKind(token string) Kind {
	switch strings.ToLower(token) {
	case "definition":
		return KindDefinition
	case "axiom":
		return KindAxiom
	case "proposition":
		return KindProposition
	}
	return Kind(strings.ToLower(token))
}
