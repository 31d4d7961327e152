package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/loomcli/loom/pkg/config"
	"github.com/loomcli/loom/pkg/document"
	"github.com/loomcli/loom/pkg/edit"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var diffResume string

//nolint:gochecknoglobals // Cobra boilerplate
var diffEditsJSON string

//nolint:gochecknoglobals // Cobra boilerplate
var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Preview an edit batch as a unified diff",
	Long: `Show what applying the current edit batch would change, as a unified
diff of the numbered resume, without writing anything.

Example:
  loom diff --resume resume.md
  loom diff --resume resume.md --edits-json custom-edits.json`,
	RunE: runDiff,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffResume, "resume", "", "Resume file the edits target (required)")
	diffCmd.Flags().StringVar(&diffEditsJSON, "edits-json", "", "Edit batch file (default .loom/edits.json next to the resume)")
	_ = diffCmd.MarkFlagRequired("resume")
}

func runDiff(cmd *cobra.Command, args []string) (err error) {
	var lines document.Lines
	lines, err = document.Read(diffResume)
	if err != nil {
		return err
	}

	editsPath := diffEditsJSON
	if editsPath == "" {
		editsPath = config.SidePaths(diffResume).Edits
	}

	var batch edit.Batch
	batch, err = readEditBatch(editsPath)
	if err != nil {
		return err
	}

	var result document.Lines
	result, err = edit.Apply(lines, batch, edit.RiskLow)
	if err != nil {
		err = errors.Wrap(err, "failed to apply edits for preview")
		return err
	}

	var patch string
	patch, err = edit.Diff(lines, result)
	if err != nil {
		return err
	}

	if patch == "" {
		fmt.Println("No changes.")
		return err
	}

	printColoredDiff(patch)

	return err
}

// printColoredDiff writes a unified diff with added lines in green and
// removed lines in red.
func printColoredDiff(patch string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	for _, line := range strings.Split(strings.TrimRight(patch, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Println(line)
		case strings.HasPrefix(line, "@@"):
			cyan.Println(line)
		case strings.HasPrefix(line, "+"):
			green.Println(line)
		case strings.HasPrefix(line, "-"):
			red.Println(line)
		default:
			fmt.Println(line)
		}
	}
}
