package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/loomcli/loom/pkg/config"
	"github.com/loomcli/loom/pkg/document"
	"github.com/loomcli/loom/pkg/edit"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var planResume string

//nolint:gochecknoglobals // Cobra boilerplate
var planModel string

//nolint:gochecknoglobals // Cobra boilerplate
var planRisk string

//nolint:gochecknoglobals // Cobra boilerplate
var planOnError string

//nolint:gochecknoglobals // Cobra boilerplate
var planNoCache bool

//nolint:gochecknoglobals // Cobra boilerplate
var planCmd = &cobra.Command{
	Use:   "plan <jd-file-or-url>",
	Short: "Generate edits and preview them without applying",
	Long: `Generate a tailored edit batch and print a human-readable summary of
every proposed operation, without modifying the resume.

The edit batch goes to .loom/edits.json and the summary to .loom/plan.txt,
both next to the resume.

Example:
  loom plan jd.txt --resume resume.md`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planResume, "resume", "", "Resume file to tailor (required)")
	planCmd.Flags().StringVar(&planModel, "model", "", "Model to generate with (default from config)")
	planCmd.Flags().StringVar(&planRisk, "risk", "", "Validation strictness: low, med, high, strict (default from config)")
	planCmd.Flags().StringVar(&planOnError, "on-error", "", "Policy for validation warnings (default from config)")
	planCmd.Flags().BoolVar(&planNoCache, "no-cache", false, "Bypass the model response cache")
	_ = planCmd.MarkFlagRequired("resume")
}

func runPlan(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var batch edit.Batch
	batch, err = generateEdits(ctx, args[0], planResume, planModel, planRisk, planOnError, planNoCache)
	if err != nil {
		return err
	}

	var lines document.Lines
	lines, err = document.Read(planResume)
	if err != nil {
		return err
	}

	var plan string
	plan, err = formatPlan(batch, lines)
	if err != nil {
		return err
	}

	paths := config.SidePaths(planResume)
	err = writeSideFile(plan, paths.Plan)
	if err != nil {
		return err
	}

	fmt.Print(plan)
	fmt.Printf("\nPlan written to %s\n", paths.Plan)

	return err
}
