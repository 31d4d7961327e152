package document

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	lines := Parse("a\nb\nc")
	want := Lines{1: "a", 2: "b", 3: "c"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Parse = %v, want %v", lines, want)
	}
}

func TestParseEmpty(t *testing.T) {
	lines := Parse("")
	if len(lines) != 0 {
		t.Errorf("Expected empty store, got %v", lines)
	}
}

func TestParsePreservesBlankLines(t *testing.T) {
	lines := Parse("a\n\nb")
	want := Lines{1: "a", 2: "", 3: "b"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Parse = %v, want %v", lines, want)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "simple", text: "a\nb\nc"},
		{name: "blank lines", text: "a\n\nb\n"},
		{name: "single line", text: "only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(Parse(tt.text))
			if got != tt.text {
				t.Errorf("Round trip = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestNumbered(t *testing.T) {
	lines := Lines{1: "a", 2: "b"}
	got := Numbered(lines)
	want := "   1 a\n   2 b"
	if got != want {
		t.Errorf("Numbered = %q, want %q", got, want)
	}
}

func TestNumberedWideLineNumbers(t *testing.T) {
	lines := Lines{1: "first", 1000: "far"}
	got := Numbered(lines)
	if !strings.Contains(got, "1000 far") {
		t.Errorf("Expected four-digit line number rendered flush, got %q", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := Lines{1: "a"}
	copied := Clone(original)
	copied[1] = "changed"
	copied[2] = "new"

	if original[1] != "a" || len(original) != 1 {
		t.Errorf("Clone is not independent: %v", original)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "resume.txt")

	original := Lines{1: "John Doe", 2: "", 3: "Engineer"}
	err := Write(original, path)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("Round trip = %v, want %v", loaded, original)
	}
}

func TestReadEmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "empty.txt")
	err := os.WriteFile(path, []byte{}, 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err = Read(path)
	if err == nil {
		t.Error("Expected error reading empty document, got nil")
	}
}

func TestReadNonexistent(t *testing.T) {
	_, err := Read("/nonexistent/resume.txt")
	if err == nil {
		t.Error("Expected error reading nonexistent document, got nil")
	}
}
