package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/loomcli/loom/pkg/config"
	"github.com/loomcli/loom/pkg/document"
	"github.com/loomcli/loom/pkg/edit"
	"github.com/loomcli/loom/pkg/jd"
	"github.com/loomcli/loom/pkg/llm"
	"github.com/loomcli/loom/pkg/resolve"
	"github.com/loomcli/loom/pkg/sections"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var generateResume string

//nolint:gochecknoglobals // Cobra boilerplate
var generateModel string

//nolint:gochecknoglobals // Cobra boilerplate
var generateRisk string

//nolint:gochecknoglobals // Cobra boilerplate
var generateOnError string

//nolint:gochecknoglobals // Cobra boilerplate
var generateNoCache bool

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate <jd-file-or-url>",
	Short: "Generate validated edits without applying them",
	Long: `Generate a tailored edit batch for a resume and persist it for review
without touching the resume itself.

The job description can be provided as:
- A file path (e.g., jd.txt)
- A URL (e.g., https://example.com/jobs/123)

The edit batch is written to .loom/edits.json next to the resume. Apply it
later with 'loom apply'.

Example:
  loom generate jd.txt --resume resume.md
  loom generate https://example.com/jobs/123 --resume resume.md --risk high`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateResume, "resume", "", "Resume file to tailor (required)")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "Model to generate with (default from config)")
	generateCmd.Flags().StringVar(&generateRisk, "risk", "", "Validation strictness: low, med, high, strict (default from config)")
	generateCmd.Flags().StringVar(&generateOnError, "on-error", "", "Policy for validation warnings: ask, retry, manual, fail, fail:soft, fail:hard (default from config)")
	generateCmd.Flags().BoolVar(&generateNoCache, "no-cache", false, "Bypass the model response cache")
	_ = generateCmd.MarkFlagRequired("resume")
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	_, err = generateEdits(ctx, args[0], generateResume, generateModel, generateRisk, generateOnError, generateNoCache)
	if err != nil {
		return err
	}

	paths := config.SidePaths(generateResume)
	fmt.Printf("Edits written to %s\n", paths.Edits)

	return err
}

// generateEdits is the shared generation flow: fetch the job description,
// number the resume, call the generator, then run the validation loop with
// regeneration wired in. The validated batch ends up in the edits side
// file.
func generateEdits(ctx context.Context, jdInput, resumePath, flagModel, flagRisk, flagOnError string, noCache bool) (batch edit.Batch, err error) {
	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return batch, err
	}

	var risk edit.RiskLevel
	risk, err = resolveRisk(flagRisk, cfg)
	if err != nil {
		return batch, err
	}

	var policy resolve.Policy
	policy, err = resolvePolicy(flagOnError, cfg)
	if err != nil {
		return batch, err
	}

	var jobText string
	jobText, err = jd.Fetch(ctx, jdInput)
	if err != nil {
		return batch, err
	}

	var lines document.Lines
	lines, err = document.Read(resumePath)
	if err != nil {
		return batch, err
	}

	numbered := document.Numbered(lines)
	if sectionContext := loadSectionContext(cfg, resumePath); sectionContext != "" {
		numbered = numbered + "\n\nSECTION MAP:\n" + sectionContext
	}

	var client *llm.Client
	client, err = newGenerationClient(cfg, flagModel, noCache)
	if err != nil {
		return batch, err
	}

	if getVerbose() {
		fmt.Printf("Generating edits with %s (risk %s)\n", client.Model(), risk)
	}

	s := newSpinner("Generating edits...")
	s.start()
	batch, err = client.GenerateEdits(ctx, jobText, numbered)
	s.stopSpinner()
	if err != nil {
		return batch, err
	}

	paths := config.SidePaths(resumePath)
	err = writeEditBatch(batch, paths.Edits)
	if err != nil {
		return batch, err
	}

	regenerate := func(warnings []string) (regenErr error) {
		currentJSON := mustBatchJSON(batch)
		var corrected edit.Batch
		corrected, regenErr = client.CorrectEdits(ctx, jobText, numbered, currentJSON, warnings)
		if regenErr != nil {
			return regenErr
		}
		batch = corrected
		regenErr = writeEditBatch(batch, paths.Edits)
		return regenErr
	}

	err = resolveValidation(&batch, lines, risk, policy, paths, regenerate)
	if err != nil {
		return batch, err
	}

	// The resolution loop may have rewritten the batch.
	err = writeEditBatch(batch, paths.Edits)
	if err != nil {
		return batch, err
	}

	return batch, err
}

// loadSectionContext returns the formatted section map when one is
// available, preferring a sections.json next to the resume over the
// configured location. Absence is not an error.
func loadSectionContext(cfg config.Config, resumePath string) (sectionMap string) {
	paths := []string{sectionsPath(resumePath)}
	if cfg.SectionsLocation != "" {
		paths = append(paths, cfg.SectionsLocation)
	}

	for _, path := range paths {
		data, err := sections.Load(path)
		if err != nil {
			continue
		}
		sectionMap = data.Format()
		return sectionMap
	}

	return sectionMap
}
