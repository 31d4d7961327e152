package edit

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/loomcli/loom/pkg/document"
)

func TestApplyReplaceLine(t *testing.T) {
	lines := document.Lines{1: "a", 2: "b", 3: "c"}
	batch := testBatch(t, `{"op": "replace_line", "line": 2, "text": "B"}`)

	result, err := Apply(lines, batch, RiskMed)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := document.Lines{1: "a", 2: "B", 3: "c"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Apply = %v, want %v", result, want)
	}
}

func TestApplyInsertAfter(t *testing.T) {
	lines := document.Lines{1: "a", 2: "b"}
	batch := testBatch(t, `{"op": "insert_after", "line": 1, "text": "x\ny"}`)

	result, err := Apply(lines, batch, RiskMed)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := document.Lines{1: "a", 2: "x", 3: "y", 4: "b"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Apply = %v, want %v", result, want)
	}
}

func TestApplyReplaceRangeShrinks(t *testing.T) {
	// Supplying one line for a two-line range shifts the tail down.
	lines := document.Lines{1: "a", 2: "b", 3: "c"}
	batch := testBatch(t, `{"op": "replace_range", "start": 2, "end": 3, "text": "x"}`)

	result, err := Apply(lines, batch, RiskMed)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := document.Lines{1: "a", 2: "x"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Apply = %v, want %v", result, want)
	}
}

func TestApplyReplaceRangeGrows(t *testing.T) {
	lines := document.Lines{1: "a", 2: "b", 3: "c"}
	batch := testBatch(t, `{"op": "replace_range", "start": 2, "end": 2, "text": "x\ny\nz"}`)

	result, err := Apply(lines, batch, RiskMed)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := document.Lines{1: "a", 2: "x", 3: "y", 4: "z", 5: "c"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Apply = %v, want %v", result, want)
	}
}

func TestApplyReplaceRangeSameCount(t *testing.T) {
	lines := document.Lines{1: "a", 2: "b", 3: "c", 4: "d"}
	batch := testBatch(t, `{"op": "replace_range", "start": 2, "end": 3, "text": "B\nC"}`)

	result, err := Apply(lines, batch, RiskMed)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := document.Lines{1: "a", 2: "B", 3: "C", 4: "d"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Apply = %v, want %v", result, want)
	}
}

func TestApplyReplaceRangeEmptyText(t *testing.T) {
	// Empty text replaces the range with a single empty line.
	lines := document.Lines{1: "a", 2: "b", 3: "c"}
	batch := testBatch(t, `{"op": "replace_range", "start": 2, "end": 3, "text": ""}`)

	result, err := Apply(lines, batch, RiskMed)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := document.Lines{1: "a", 2: ""}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Apply = %v, want %v", result, want)
	}
}

func TestApplyDeleteRangeRenumbers(t *testing.T) {
	lines := document.Lines{1: "a", 2: "b", 3: "c", 4: "d", 5: "e"}
	batch := testBatch(t, `{"op": "delete_range", "start": 2, "end": 3}`)

	result, err := Apply(lines, batch, RiskMed)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := document.Lines{1: "a", 2: "d", 3: "e"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Apply = %v, want %v", result, want)
	}
}

func TestApplyComposedBatch(t *testing.T) {
	// Multiple edits in one batch compose bottom-up without interfering
	// with each other's line numbering.
	lines := document.Lines{1: "a", 2: "b", 3: "c", 4: "d", 5: "e"}
	batch := testBatch(t,
		`{"op": "replace_line", "line": 1, "text": "A"}`,
		`{"op": "insert_after", "line": 2, "text": "b2"}`,
		`{"op": "delete_range", "start": 4, "end": 5}`,
	)

	result, err := Apply(lines, batch, RiskMed)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := document.Lines{1: "A", 2: "b", 3: "b2", 4: "c"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Apply = %v, want %v", result, want)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	lines := document.Lines{1: "a", 2: "b", 3: "c"}
	batch := testBatch(t, `{"op": "delete_range", "start": 1, "end": 2}`)

	_, err := Apply(lines, batch, RiskMed)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := document.Lines{1: "a", 2: "b", 3: "c"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Input store was mutated: %v", lines)
	}
}

func TestApplyUnsupportedVersion(t *testing.T) {
	batch := Batch{
		Version: 2,
		Ops:     rawOps(t, `{"op": "replace_line", "line": 1, "text": "x"}`),
	}

	_, err := Apply(document.Lines{1: "a"}, batch, RiskMed)
	if err == nil {
		t.Fatal("Expected error for unsupported version, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported edits version: 2") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestApplyUnknownOpFails(t *testing.T) {
	batch := testBatch(t, `{"op": "swap_lines", "line": 1}`)

	_, err := Apply(document.Lines{1: "a"}, batch, RiskMed)
	if err == nil {
		t.Fatal("Expected error for unknown operation, got nil")
	}
	if !strings.Contains(err.Error(), "unknown operation type") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestApplyBoundsRecheck(t *testing.T) {
	tests := []struct {
		name string
		op   string
	}{
		{name: "replace_line missing", op: `{"op": "replace_line", "line": 9, "text": "x"}`},
		{name: "replace_range missing", op: `{"op": "replace_range", "start": 2, "end": 9, "text": "x"}`},
		{name: "insert_after missing", op: `{"op": "insert_after", "line": 9, "text": "x"}`},
		{name: "delete_range missing", op: `{"op": "delete_range", "start": 2, "end": 9}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(document.Lines{1: "a", 2: "b"}, testBatch(t, tt.op), RiskMed)
			if err == nil {
				t.Error("Expected bounds error, got nil")
			}
		})
	}
}

func TestParseBatchVersionGate(t *testing.T) {
	_, err := ParseBatch([]byte(`{"version": 2, "meta": {}, "ops": []}`))
	if err == nil {
		t.Fatal("Expected error for version 2, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported edits version: 2") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestBatchRoundTrip(t *testing.T) {
	batch, err := NewBatch(Meta{Strategy: "rule", Model: "m"},
		ReplaceLine{Line: 1, Text: "x", Why: "test"},
		ReplaceRange{Start: 2, End: 3, Text: "a\nb"},
		InsertAfter{Line: 3, Text: "y"},
		DeleteRange{Start: 4, End: 5},
	)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}

	data, err := json.Marshal(batch)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	parsed, err := ParseBatch(data)
	if err != nil {
		t.Fatalf("ParseBatch failed: %v", err)
	}

	ops, err := parsed.Operations()
	if err != nil {
		t.Fatalf("Operations failed: %v", err)
	}

	if len(ops) != 4 {
		t.Fatalf("Expected 4 operations, got %d", len(ops))
	}

	rl, ok := ops[0].(ReplaceLine)
	if !ok || rl.Line != 1 || rl.Text != "x" || rl.Why != "test" {
		t.Errorf("Unexpected first op: %#v", ops[0])
	}
	if _, ok = ops[1].(ReplaceRange); !ok {
		t.Errorf("Unexpected second op: %#v", ops[1])
	}
}

func TestParseRisk(t *testing.T) {
	for _, valid := range []string{"low", "med", "high", "strict"} {
		if _, err := ParseRisk(valid); err != nil {
			t.Errorf("ParseRisk(%q) failed: %v", valid, err)
		}
	}

	if _, err := ParseRisk("yolo"); err == nil {
		t.Error("Expected error for invalid risk level, got nil")
	}
}
