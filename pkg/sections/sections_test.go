package sections

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loomcli/loom/pkg/document"
)

func TestDetect(t *testing.T) {
	lines := document.Parse(`Jane Doe
jane@example.com

EXPERIENCE
Acme Corp, Software Engineer
- Built things

Education:
State University

# Skills
Go, Python`)

	data := Detect(lines)

	want := []Section{
		{Name: "EXPERIENCE", Start: 4, End: 7},
		{Name: "Education", Start: 8, End: 10},
		{Name: "Skills", Start: 11, End: 12},
	}

	if len(data.Sections) != len(want) {
		t.Fatalf("expected %d sections, got %d: %+v", len(want), len(data.Sections), data.Sections)
	}

	for i, w := range want {
		got := data.Sections[i]
		if got != w {
			t.Errorf("section %d: expected %+v, got %+v", i, w, got)
		}
	}
}

func TestDetectNoHeadings(t *testing.T) {
	lines := document.Parse("just some prose\nwith no headings at all")

	data := Detect(lines)
	if len(data.Sections) != 0 {
		t.Errorf("expected no sections, got %+v", data.Sections)
	}
}

func TestIsHeading(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"EXPERIENCE", true},
		{"# Skills", true},
		{"Education:", true},
		{"Acme Corp, Software Engineer", false},
		{"- Built things", false},
		{"", false},
		{"2020-2024", false},
		{"THIS IS A VERY LONG ALL CAPS LINE THAT READS LIKE A SHOUTED SENTENCE", false},
	}

	for _, tc := range cases {
		if got := isHeading(tc.line); got != tc.want {
			t.Errorf("isHeading(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sections.json")

	data := Data{
		Sections: []Section{
			{Name: "Experience", Start: 4, End: 12},
			{Name: "Skills", Start: 13, End: 20},
		},
	}

	err := data.Save(path)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Sections) != 2 || loaded.Sections[0] != data.Sections[0] {
		t.Errorf("round trip mismatch: %+v", loaded.Sections)
	}
}

func TestLoadNonexistent(t *testing.T) {
	_, err := Load("/nonexistent/sections.json")
	if err == nil {
		t.Error("expected error loading nonexistent file, got nil")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.json")
	err := os.WriteFile(path, []byte("not valid json"), 0600)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err = Load(path)
	if err == nil {
		t.Error("expected error loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		data      Data
		wantError bool
	}{
		{
			name: "valid data",
			data: Data{
				Sections: []Section{{Name: "Experience", Start: 1, End: 5}},
			},
			wantError: false,
		},
		{
			name:      "empty sections",
			data:      Data{},
			wantError: true,
		},
		{
			name: "missing name",
			data: Data{
				Sections: []Section{{Start: 1, End: 5}},
			},
			wantError: true,
		},
		{
			name: "inverted range",
			data: Data{
				Sections: []Section{{Name: "Experience", Start: 5, End: 1}},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	data := Data{
		Sections: []Section{
			{Name: "Experience", Start: 4, End: 12},
			{Name: "Skills", Start: 13, End: 20},
		},
	}

	want := "Experience: lines 4-12\nSkills: lines 13-20"
	if got := data.Format(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
