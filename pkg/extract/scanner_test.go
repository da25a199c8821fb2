package extract

import (
	"strings"
	"testing"
)

func scanText(t *testing.T, text string) ([]Span, []Diagnostic) {
	t.Helper()
	spans, diags, err := NewScanner().Scan(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return spans, diags
}

func TestScanBasicSequence(t *testing.T) {
	input := "PART I\nDEFINITION I\nBy X.\nAXIOM I\nEverything exists.\nPROPOSITION I\nSubstance is prior.\nDEMONSTRATION\nSee Definition I.\n"

	spans, diags := scanText(t, input)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}

	expected := []struct {
		marker MarkerKind
		number int
		text   string
	}{
		{MarkerPart, 1, ""},
		{MarkerDefinition, 1, "By X."},
		{MarkerAxiom, 1, "Everything exists."},
		{MarkerProposition, 1, "Substance is prior."},
		{MarkerDemonstration, 0, "See Definition I."},
	}

	if len(spans) != len(expected) {
		t.Fatalf("expected %d spans, got %d: %+v", len(expected), len(spans), spans)
	}
	for i, want := range expected {
		if spans[i].Marker != want.marker {
			t.Errorf("span %d: marker %q, want %q", i, spans[i].Marker, want.marker)
		}
		if spans[i].Number != want.number {
			t.Errorf("span %d: number %d, want %d", i, spans[i].Number, want.number)
		}
		if spans[i].Text != want.text {
			t.Errorf("span %d: text %q, want %q", i, spans[i].Text, want.text)
		}
	}
}

func TestScanCaseInsensitiveMarkers(t *testing.T) {
	input := "Part I\ndefinition ii\nSome text.\n"

	spans, diags := scanText(t, input)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].Marker != MarkerDefinition || spans[1].Number != 2 {
		t.Errorf("got %+v, want definition 2", spans[1])
	}
}

func TestScanMarkerWithTrailingPunctuation(t *testing.T) {
	input := "PART I.\nPROPOSITION VII:\nText here.\n"

	spans, _ := scanText(t, input)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].Marker != MarkerProposition || spans[1].Number != 7 {
		t.Errorf("got %+v, want proposition 7", spans[1])
	}
}

// A demonstration marker outside any proposition is a soft structural
// error: the marker line stays with the previous block as continuation
// text and the scan continues.
func TestScanDemonstrationOutsideProposition(t *testing.T) {
	input := "PART I\nDEFINITION I\nBy X.\nDEMONSTRATION\nOrphan text.\n"

	spans, diags := scanText(t, input)

	if len(diags) != 1 || diags[0].Kind != DiagStructuralError {
		t.Fatalf("expected one structural_error diagnostic, got %v", diags)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	// The definition span absorbs the illegal marker and its text.
	defText := spans[1].Text
	if !strings.Contains(defText, "DEMONSTRATION") || !strings.Contains(defText, "Orphan text.") {
		t.Errorf("definition text should absorb the degraded span, got %q", defText)
	}
}

// Definition/axiom markers close the proposition context, so a scholium
// after a definition is illegal even when a proposition appeared earlier.
func TestScanScholiumAfterDefinitionClosesProposition(t *testing.T) {
	input := "PART I\nPROPOSITION I\nText.\nDEFINITION II\nBy Y.\nSCHOLIUM\nLate note.\n"

	spans, diags := scanText(t, input)
	if len(diags) != 1 || diags[0].Kind != DiagStructuralError {
		t.Fatalf("expected one structural_error diagnostic, got %v", diags)
	}
	for _, span := range spans {
		if span.Marker == MarkerScholium {
			t.Errorf("scholium span should have been degraded, got %+v", span)
		}
	}
}

func TestScanScholiumAndCorollaryWithinProposition(t *testing.T) {
	input := "PART I\nPROPOSITION I\nText.\nSCHOLIUM\nNote.\nCOROLLARY\nFirst.\nCOROLLARY II\nSecond.\n"

	spans, diags := scanText(t, input)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}

	var markers []MarkerKind
	for _, span := range spans {
		markers = append(markers, span.Marker)
	}
	want := []MarkerKind{MarkerPart, MarkerProposition, MarkerScholium, MarkerCorollary, MarkerCorollary}
	if len(markers) != len(want) {
		t.Fatalf("markers %v, want %v", markers, want)
	}
	for i := range want {
		if markers[i] != want[i] {
			t.Errorf("marker %d: %q, want %q", i, markers[i], want[i])
		}
	}
}

// A malformed numeral abandons only that marker; the line is kept as
// continuation text of the previous block.
func TestScanMalformedNumeral(t *testing.T) {
	input := "PART I\nDEFINITION IIII\nBad numbering.\nDEFINITION II\nGood.\n"

	spans, diags := scanText(t, input)

	if len(diags) != 1 || diags[0].Kind != DiagMalformedNumeral {
		t.Fatalf("expected one malformed_numeral diagnostic, got %v", diags)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[1].Marker != MarkerDefinition || spans[1].Number != 2 {
		t.Errorf("surviving span %+v, want definition 2", spans[1])
	}
	if !strings.Contains(spans[0].Text, "DEFINITION IIII") {
		t.Errorf("part text should keep the degraded marker line, got %q", spans[0].Text)
	}
}

// Text before the first marker (titles, surviving headers) is tolerated
// and dropped.
func TestScanPreambleTolerated(t *testing.T) {
	input := "THE ETHICS\nTranslated from the Latin\n\nPART I\nDEFINITION I\nBy X.\n"

	spans, diags := scanText(t, input)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	if len(spans) != 2 || spans[0].Marker != MarkerPart {
		t.Fatalf("expected part then definition, got %+v", spans)
	}
}

func TestScanEmptyInput(t *testing.T) {
	spans, diags := scanText(t, "")
	if len(spans) != 0 || len(diags) != 0 {
		t.Errorf("empty input: got %d spans, %d diagnostics", len(spans), len(diags))
	}
}

// A citation in running text must not be mistaken for a section marker:
// markers are only recognized on their own line.
func TestScanCitationNotAMarker(t *testing.T) {
	input := "PART I\nPROPOSITION I\nThis follows from Definition II and Axiom I.\n"

	spans, _ := scanText(t, input)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[1].Text != "This follows from Definition II and Axiom I." {
		t.Errorf("proposition text %q", spans[1].Text)
	}
}
