package cmd

import (
	"fmt"

	"github.com/loomcli/loom/pkg/config"
	"github.com/loomcli/loom/pkg/document"
	"github.com/loomcli/loom/pkg/edit"
	"github.com/loomcli/loom/pkg/resolve"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var applyResume string

//nolint:gochecknoglobals // Cobra boilerplate
var applyEditsJSON string

//nolint:gochecknoglobals // Cobra boilerplate
var applyOutput string

//nolint:gochecknoglobals // Cobra boilerplate
var applyRisk string

//nolint:gochecknoglobals // Cobra boilerplate
var applyOnError string

//nolint:gochecknoglobals // Cobra boilerplate
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a generated edit batch to the resume",
	Long: `Apply a previously generated edit batch to a resume.

Edits are re-validated before application. The original resume is never
modified in place unless --output points at it explicitly; by default the
result is written next to the original with a .tailored suffix. A unified
diff of the change is kept in .loom/diff.patch.

Example:
  loom apply --resume resume.md
  loom apply --resume resume.md --edits-json custom-edits.json --output out.md`,
	RunE: runApply,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVar(&applyResume, "resume", "", "Resume file to apply edits to (required)")
	applyCmd.Flags().StringVar(&applyEditsJSON, "edits-json", "", "Edit batch file (default .loom/edits.json next to the resume)")
	applyCmd.Flags().StringVar(&applyOutput, "output", "", "Output file (default <resume>.tailored.<ext>)")
	applyCmd.Flags().StringVar(&applyRisk, "risk", "", "Validation strictness: low, med, high, strict (default from config)")
	applyCmd.Flags().StringVar(&applyOnError, "on-error", "", "Policy for validation warnings (default from config)")
	_ = applyCmd.MarkFlagRequired("resume")
}

func runApply(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	var risk edit.RiskLevel
	risk, err = resolveRisk(applyRisk, cfg)
	if err != nil {
		return err
	}

	var policy resolve.Policy
	policy, err = resolvePolicy(applyOnError, cfg)
	if err != nil {
		return err
	}

	var lines document.Lines
	lines, err = document.Read(applyResume)
	if err != nil {
		return err
	}

	paths := config.SidePaths(applyResume)
	editsPath := applyEditsJSON
	if editsPath == "" {
		editsPath = paths.Edits
	}

	var batch edit.Batch
	batch, err = readEditBatch(editsPath)
	if err != nil {
		return err
	}

	// Validation resolution reloads from the canonical edits side file, so
	// an explicitly supplied batch is copied there first.
	if editsPath != paths.Edits {
		err = writeEditBatch(batch, paths.Edits)
		if err != nil {
			return err
		}
	}

	err = resolveValidation(&batch, lines, risk, policy, paths, nil)
	if err != nil {
		return err
	}

	var result document.Lines
	result, err = edit.Apply(lines, batch, risk)
	if err != nil {
		err = errors.Wrap(err, "failed to apply edits")
		return err
	}

	outPath := applyOutput
	if outPath == "" {
		outPath = tailoredPath(applyResume)
	}

	err = document.Write(result, outPath)
	if err != nil {
		return err
	}

	var diffText string
	diffText, err = edit.Diff(lines, result)
	if err != nil {
		return err
	}
	err = writeSideFile(diffText, paths.Diff)
	if err != nil {
		return err
	}

	fmt.Printf("Applied %d operation(s): %s -> %s\n", len(batch.Ops), applyResume, outPath)
	if getVerbose() {
		fmt.Printf("Diff written to %s\n", paths.Diff)
	}

	return err
}
