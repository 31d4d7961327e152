package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/loomcli/loom/pkg/ats"
	"github.com/loomcli/loom/pkg/document"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var atsResume string

//nolint:gochecknoglobals // Cobra boilerplate
var atsJSON bool

//nolint:gochecknoglobals // Cobra boilerplate
var atsCmd = &cobra.Command{
	Use:   "ats",
	Short: "Check resume compatibility with automated parsers",
	Long: `Analyze a resume for constructs that applicant tracking systems
commonly fail to parse: decorative bullets, unusual unicode, missing or
non-standard section headings, mangled contact lines, and inconsistent
dates.

The resume passes when no critical issue is found. Exit status is non-zero
on failure so the check can gate automation.

Example:
  loom ats --resume resume.md
  loom ats --resume resume.md --json`,
	RunE: runATS,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(atsCmd)
	atsCmd.Flags().StringVar(&atsResume, "resume", "", "Resume file to analyze (required)")
	atsCmd.Flags().BoolVar(&atsJSON, "json", false, "Emit the report as JSON")
	_ = atsCmd.MarkFlagRequired("resume")
}

func runATS(cmd *cobra.Command, args []string) (err error) {
	var lines document.Lines
	lines, err = document.Read(atsResume)
	if err != nil {
		return err
	}

	report := ats.Analyze(lines)

	if atsJSON {
		var data []byte
		data, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			err = errors.Wrap(err, "failed to marshal report")
			return err
		}
		fmt.Println(string(data))
	} else {
		printATSReport(report)
	}

	if !report.Passed {
		// Non-zero exit for automation without cobra's usage dump.
		os.Exit(1)
	}

	return err
}

// printATSReport renders the report for a terminal, most severe issues
// first.
func printATSReport(report ats.Report) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)

	fmt.Printf("Compatibility score: %d/100\n", report.Score)
	if report.Passed {
		green.Println("PASSED")
	} else {
		red.Println("FAILED")
	}

	for _, severity := range []ats.Severity{ats.SeverityCritical, ats.SeverityWarning, ats.SeverityInfo} {
		issues := report.IssuesBySeverity(severity)
		if len(issues) == 0 {
			continue
		}

		fmt.Println()
		switch severity {
		case ats.SeverityCritical:
			red.Printf("Critical (%d):\n", len(issues))
		case ats.SeverityWarning:
			yellow.Printf("Warnings (%d):\n", len(issues))
		case ats.SeverityInfo:
			fmt.Printf("Info (%d):\n", len(issues))
		}

		for _, issue := range issues {
			location := ""
			if issue.Location != "" {
				location = " [" + issue.Location + "]"
			}
			fmt.Printf("  - %s%s\n", issue.Description, location)
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range report.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
}
