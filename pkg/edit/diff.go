package edit

import (
	"fmt"

	"github.com/loomcli/loom/pkg/document"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between two line stores. Each store is
// rendered as numbered rows so the diff reads against the same line numbers
// the generator and validator use. Purely presentational.
func Diff(oldLines, newLines document.Lines) (patch string, err error) {
	ud := difflib.UnifiedDiff{
		A:        numberedRows(oldLines),
		B:        numberedRows(newLines),
		FromFile: "old",
		ToFile:   "new",
		Context:  3,
	}

	patch, err = difflib.GetUnifiedDiffString(ud)
	if err != nil {
		err = errors.Wrap(err, "failed to render unified diff")
		return patch, err
	}

	return patch, err
}

func numberedRows(lines document.Lines) (rows []string) {
	rows = make([]string, 0, len(lines))
	for _, num := range document.SortedNumbers(lines) {
		rows = append(rows, fmt.Sprintf("%4d %s\n", num, lines[num]))
	}
	return rows
}
