package sections

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loomcli/loom/pkg/document"
	"github.com/pkg/errors"
)

// Section is a contiguous run of resume lines under one heading. Start and
// End are inclusive line numbers in the source document.
type Section struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Data is the persisted section map for a resume.
type Data struct {
	Sections []Section `json:"sections"`
}

// Load reads a section map from a JSON file.
func Load(path string) (data Data, err error) {
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read sections file: %s", path)
		return data, err
	}

	err = json.Unmarshal(fileData, &data)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse sections JSON: %s", path)
		return data, err
	}

	err = data.Validate()
	if err != nil {
		err = errors.Wrap(err, "sections validation failed")
		return data, err
	}

	return data, err
}

// Save writes the section map to a JSON file.
func (d Data) Save(path string) (err error) {
	var fileData []byte
	fileData, err = json.MarshalIndent(d, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal sections")
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create sections directory for %s", path)
		return err
	}

	err = os.WriteFile(path, fileData, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write sections file: %s", path)
		return err
	}

	return err
}

// Validate checks that the section map is well-formed.
func (d *Data) Validate() (err error) {
	if len(d.Sections) == 0 {
		err = errors.New("no sections found")
		return err
	}

	for i, section := range d.Sections {
		if section.Name == "" {
			err = errors.Errorf("section at index %d missing name", i)
			return err
		}
		if section.Start < 1 || section.End < section.Start {
			err = errors.Errorf("section %s has invalid range %d-%d", section.Name, section.Start, section.End)
			return err
		}
	}

	return err
}

// Format renders the section map as prompt context, one section per line.
func (d Data) Format() (text string) {
	rows := make([]string, 0, len(d.Sections))
	for _, section := range d.Sections {
		rows = append(rows, fmt.Sprintf("%s: lines %d-%d", section.Name, section.Start, section.End))
	}
	text = strings.Join(rows, "\n")
	return text
}

// Detect derives a section map from the resume lines. A line counts as a
// heading when it is a markdown heading, an all-caps line, or a short line
// ending in a colon. Each section runs from its heading to the line before
// the next heading.
func Detect(lines document.Lines) (data Data) {
	numbers := document.SortedNumbers(lines)

	data.Sections = make([]Section, 0)
	for _, num := range numbers {
		text := lines[num]
		if !isHeading(text) {
			continue
		}

		// Close out the previous section.
		if n := len(data.Sections); n > 0 {
			data.Sections[n-1].End = num - 1
		}

		data.Sections = append(data.Sections, Section{
			Name:  headingName(text),
			Start: num,
			End:   num,
		})
	}

	if n := len(data.Sections); n > 0 && len(numbers) > 0 {
		data.Sections[n-1].End = numbers[len(numbers)-1]
	}

	return data
}

// isHeading applies the heading heuristics to a single line.
func isHeading(text string) (ok bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ok
	}

	if strings.HasPrefix(trimmed, "#") {
		ok = true
		return ok
	}

	if strings.HasSuffix(trimmed, ":") && len(trimmed) <= 40 {
		ok = true
		return ok
	}

	// All-caps with at least one letter, short enough to be a heading.
	hasLetter := false
	for _, r := range trimmed {
		if r >= 'a' && r <= 'z' {
			return ok
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	ok = hasLetter && len(trimmed) <= 40

	return ok
}

// headingName normalizes a heading line into a section name.
func headingName(text string) (name string) {
	name = strings.TrimSpace(text)
	name = strings.TrimLeft(name, "# ")
	name = strings.TrimSuffix(name, ":")
	name = strings.TrimSpace(name)
	return name
}
