package extract

import (
	"strings"
	"testing"
)

func buildText(t *testing.T, text string) (*ElementSet, []Diagnostic) {
	t.Helper()
	spans, scanDiags := NewScanner().ScanLines(strings.Split(text, "\n"))
	set, buildDiags := NewBuilder().Build(spans)
	return set, append(scanDiags, buildDiags...)
}

func TestBuildBasicDocument(t *testing.T) {
	input := "PART I\nConcerning God.\nDEFINITION I\nBy cause of itself.\nAXIOM I\nEverything exists.\nPROPOSITION I\nSubstance is prior.\nDEMONSTRATION\nSee Definition I.\n"

	set, diags := buildText(t, input)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}

	stats := set.Statistics()
	if stats.Parts != 1 || stats.Definitions != 1 || stats.Axioms != 1 || stats.Propositions != 1 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}

	part := set.Parts[1]
	if part == nil || part.Text != "Concerning God." {
		t.Errorf("part 1: %+v", part)
	}

	def := set.Definitions[Identity{KindDefinition, 1, 1}]
	if def == nil || def.Text != "By cause of itself." {
		t.Errorf("definition 1,1: %+v", def)
	}

	prop := set.Propositions[Identity{KindProposition, 1, 1}]
	if prop == nil {
		t.Fatal("proposition 1,1 missing")
	}
	if prop.Demonstration != "See Definition I." {
		t.Errorf("demonstration %q", prop.Demonstration)
	}
}

func TestBuildTracksPartContext(t *testing.T) {
	input := "PART I\nDEFINITION I\nFirst part def.\nPART II\nDEFINITION I\nSecond part def.\n"

	set, diags := buildText(t, input)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}

	if set.Definitions[Identity{KindDefinition, 1, 1}] == nil {
		t.Error("definition 1,1 missing")
	}
	if set.Definitions[Identity{KindDefinition, 2, 1}] == nil {
		t.Error("definition 2,1 missing")
	}
}

// Two DEFINITION I markers in the same part yield one element and one
// duplicate diagnostic; the first occurrence wins.
func TestBuildDuplicateDefinition(t *testing.T) {
	input := "PART I\nDEFINITION I\nFirst text.\nDEFINITION I\nSecond text.\n"

	set, diags := buildText(t, input)

	var dupes int
	for _, d := range diags {
		if d.Kind == DiagDuplicateElement {
			dupes++
		}
	}
	if dupes != 1 {
		t.Fatalf("expected 1 duplicate diagnostic, got %d (%v)", dupes, diags)
	}

	def := set.Definitions[Identity{KindDefinition, 1, 1}]
	if def == nil || def.Text != "First text." {
		t.Errorf("first occurrence should win, got %+v", def)
	}
	if got := len(set.Definitions); got != 1 {
		t.Errorf("expected 1 definition, got %d", got)
	}
}

func TestBuildCorollaryOrderPreserved(t *testing.T) {
	input := "PART I\nPROPOSITION I\nText.\nCOROLLARY\nA\nCOROLLARY\nB\n"

	set, diags := buildText(t, input)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}

	prop := set.Propositions[Identity{KindProposition, 1, 1}]
	if prop == nil {
		t.Fatal("proposition missing")
	}
	if len(prop.Corollaries) != 2 {
		t.Fatalf("expected 2 corollaries, got %d", len(prop.Corollaries))
	}
	if prop.Corollaries[0] != "A" || prop.Corollaries[1] != "B" {
		t.Errorf("corollary order %v, want [A B]", prop.Corollaries)
	}
}

// Elements before any PART marker land in the synthetic part-0 bucket with
// a missing-context diagnostic, and the containment check flags the bucket
// at the end of the parse.
func TestBuildMissingPartContext(t *testing.T) {
	input := "DEFINITION I\nOrphan definition.\nPART I\nDEFINITION II\nHoused definition.\n"

	set, diags := buildText(t, input)

	kinds := make(map[DiagnosticKind]int)
	for _, d := range diags {
		kinds[d.Kind]++
	}
	if kinds[DiagMissingPartContext] != 1 {
		t.Errorf("expected 1 missing_part_context, got %d (%v)", kinds[DiagMissingPartContext], diags)
	}
	if kinds[DiagMissingPart] != 1 {
		t.Errorf("expected 1 missing_part integrity finding, got %d (%v)", kinds[DiagMissingPart], diags)
	}

	// The orphan is retained, not dropped.
	orphan := set.Definitions[Identity{KindDefinition, 0, 1}]
	if orphan == nil || orphan.Text != "Orphan definition." {
		t.Errorf("orphan definition should be in the part-0 bucket, got %+v", orphan)
	}
	if set.Definitions[Identity{KindDefinition, 1, 2}] == nil {
		t.Error("definition 1,2 missing")
	}
}

func TestBuildDuplicatePartKeepsFirstText(t *testing.T) {
	input := "PART I\nOriginal title.\nDEFINITION I\nD.\nPART I\nRepeated title.\nAXIOM I\nA.\n"

	set, diags := buildText(t, input)

	var dupes int
	for _, d := range diags {
		if d.Kind == DiagDuplicateElement {
			dupes++
		}
	}
	if dupes != 1 {
		t.Fatalf("expected 1 duplicate diagnostic, got %v", diags)
	}
	if set.Parts[1].Text != "Original title." {
		t.Errorf("part text %q, want first occurrence", set.Parts[1].Text)
	}
	// The duplicate marker still resets context: the axiom belongs to part 1.
	if set.Axioms[Identity{KindAxiom, 1, 1}] == nil {
		t.Error("axiom 1,1 missing")
	}
}

// A second DEMONSTRATION for the same proposition keeps the first and
// records a duplicate diagnostic.
func TestBuildDuplicateDemonstration(t *testing.T) {
	input := "PART I\nPROPOSITION I\nText.\nDEMONSTRATION\nFirst proof.\nDEMONSTRATION\nSecond proof.\n"

	set, diags := buildText(t, input)

	var dupes int
	for _, d := range diags {
		if d.Kind == DiagDuplicateElement {
			dupes++
		}
	}
	if dupes != 1 {
		t.Fatalf("expected 1 duplicate diagnostic, got %v", diags)
	}
	prop := set.Propositions[Identity{KindProposition, 1, 1}]
	if prop.Demonstration != "First proof." {
		t.Errorf("demonstration %q, want first occurrence", prop.Demonstration)
	}
}

func TestIdentityKeys(t *testing.T) {
	testCases := []struct {
		id       Identity
		expected string
	}{
		{Identity{KindPart, 1, 1}, "part_1_1"},
		{Identity{KindDefinition, 1, 2}, "definition_1_2"},
		{Identity{KindAxiom, 2, 3}, "axiom_2_3"},
		{Identity{KindProposition, 3, 11}, "proposition_3_11"},
	}
	for _, tc := range testCases {
		if got := tc.id.Key(); got != tc.expected {
			t.Errorf("Key(%+v): got %q, want %q", tc.id, got, tc.expected)
		}
	}
}

func TestIdentityUniquenessAcrossKinds(t *testing.T) {
	// A Definition I and an Axiom I in the same part are distinct elements.
	input := "PART I\nDEFINITION I\nD.\nAXIOM I\nA.\nPROPOSITION I\nP.\n"

	set, diags := buildText(t, input)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	if len(set.Definitions) != 1 || len(set.Axioms) != 1 || len(set.Propositions) != 1 {
		t.Errorf("statistics %+v", set.Statistics())
	}
}
