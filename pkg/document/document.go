package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Lines is the canonical in-memory form of a document: an ordered mapping
// from 1-based line number to text content. Line numbers are contiguous 1..N
// between operations; gaps may exist only transiently inside the applier.
type Lines map[int]string

// Parse splits text into numbered lines starting at 1.
func Parse(text string) (lines Lines) {
	lines = Lines{}
	if text == "" {
		return lines
	}
	for i, raw := range strings.Split(text, "\n") {
		lines[i+1] = raw
	}
	return lines
}

// Render joins lines back into text in line-number order.
func Render(lines Lines) (text string) {
	ordered := make([]string, 0, len(lines))
	for _, num := range SortedNumbers(lines) {
		ordered = append(ordered, lines[num])
	}
	text = strings.Join(ordered, "\n")
	return text
}

// Numbered renders lines as right-aligned numbered rows, one per line.
// This is the representation fed to both the generator prompt and the
// diff reporter.
func Numbered(lines Lines) (text string) {
	rows := make([]string, 0, len(lines))
	for _, num := range SortedNumbers(lines) {
		rows = append(rows, fmt.Sprintf("%4d %s", num, lines[num]))
	}
	text = strings.Join(rows, "\n")
	return text
}

// SortedNumbers returns all line numbers in ascending order.
func SortedNumbers(lines Lines) (nums []int) {
	nums = make([]int, 0, len(lines))
	for num := range lines {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}

// Clone returns an independent copy of lines.
func Clone(lines Lines) (copied Lines) {
	copied = make(Lines, len(lines))
	for num, text := range lines {
		copied[num] = text
	}
	return copied
}

// Read loads a document from a text file as numbered lines.
func Read(path string) (lines Lines, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read document: %s", path)
		return lines, err
	}

	if len(data) == 0 {
		err = errors.Errorf("document is empty: %s", path)
		return lines, err
	}

	lines = Parse(strings.TrimRight(string(data), "\n"))
	return lines, err
}

// Write serializes lines to a text file in line-number order, creating
// parent directories as needed.
func Write(lines Lines, path string) (err error) {
	err = os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory for: %s", path)
		return err
	}

	err = os.WriteFile(path, []byte(Render(lines)+"\n"), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write document: %s", path)
		return err
	}

	return err
}
