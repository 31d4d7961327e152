package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/loomcli/loom/pkg/config"
	"github.com/loomcli/loom/pkg/document"
	"github.com/loomcli/loom/pkg/edit"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var tailorResume string

//nolint:gochecknoglobals // Cobra boilerplate
var tailorModel string

//nolint:gochecknoglobals // Cobra boilerplate
var tailorRisk string

//nolint:gochecknoglobals // Cobra boilerplate
var tailorOnError string

//nolint:gochecknoglobals // Cobra boilerplate
var tailorOutput string

//nolint:gochecknoglobals // Cobra boilerplate
var tailorNoCache bool

//nolint:gochecknoglobals // Cobra boilerplate
var tailorCmd = &cobra.Command{
	Use:   "tailor <jd-file-or-url>",
	Short: "Generate and apply edits in one pass",
	Long: `Tailor a resume to a job description end to end: generate an edit
batch, validate it, apply it, and write the result.

This is 'loom generate' followed by 'loom apply'. The intermediate edit
batch and the diff of the change are kept under .loom/ next to the resume.

Example:
  loom tailor jd.txt --resume resume.md
  loom tailor https://example.com/jobs/123 --resume resume.md --output final.md`,
	Args: cobra.ExactArgs(1),
	RunE: runTailor,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tailorCmd)
	tailorCmd.Flags().StringVar(&tailorResume, "resume", "", "Resume file to tailor (required)")
	tailorCmd.Flags().StringVar(&tailorModel, "model", "", "Model to generate with (default from config)")
	tailorCmd.Flags().StringVar(&tailorRisk, "risk", "", "Validation strictness: low, med, high, strict (default from config)")
	tailorCmd.Flags().StringVar(&tailorOnError, "on-error", "", "Policy for validation warnings (default from config)")
	tailorCmd.Flags().StringVar(&tailorOutput, "output", "", "Output file (default <resume>.tailored.<ext>)")
	tailorCmd.Flags().BoolVar(&tailorNoCache, "no-cache", false, "Bypass the model response cache")
	_ = tailorCmd.MarkFlagRequired("resume")
}

func runTailor(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var batch edit.Batch
	batch, err = generateEdits(ctx, args[0], tailorResume, tailorModel, tailorRisk, tailorOnError, tailorNoCache)
	if err != nil {
		return err
	}

	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	var risk edit.RiskLevel
	risk, err = resolveRisk(tailorRisk, cfg)
	if err != nil {
		return err
	}

	var lines document.Lines
	lines, err = document.Read(tailorResume)
	if err != nil {
		return err
	}

	var result document.Lines
	result, err = edit.Apply(lines, batch, risk)
	if err != nil {
		err = errors.Wrap(err, "failed to apply edits")
		return err
	}

	outPath := tailorOutput
	if outPath == "" {
		outPath = tailoredPath(tailorResume)
	}

	err = document.Write(result, outPath)
	if err != nil {
		return err
	}

	paths := config.SidePaths(tailorResume)
	var diffText string
	diffText, err = edit.Diff(lines, result)
	if err != nil {
		return err
	}
	err = writeSideFile(diffText, paths.Diff)
	if err != nil {
		return err
	}

	fmt.Printf("Tailored resume written to %s\n", outPath)
	if getVerbose() {
		fmt.Printf("Edits: %s\nDiff:  %s\n", paths.Edits, paths.Diff)
	}

	return err
}
