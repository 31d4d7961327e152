package cmd

import (
	"fmt"

	"github.com/loomcli/loom/pkg/document"
	"github.com/loomcli/loom/pkg/sections"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var sectionizeResume string

//nolint:gochecknoglobals // Cobra boilerplate
var sectionizeCmd = &cobra.Command{
	Use:   "sectionize",
	Short: "Detect resume sections and save the section map",
	Long: `Detect section headings in a resume and persist the resulting section
map to .loom/sections.json next to it.

The section map is fed to edit generation as extra context so edits land
in the right part of the document.

Example:
  loom sectionize --resume resume.md`,
	RunE: runSectionize,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(sectionizeCmd)
	sectionizeCmd.Flags().StringVar(&sectionizeResume, "resume", "", "Resume file to sectionize (required)")
	_ = sectionizeCmd.MarkFlagRequired("resume")
}

func runSectionize(cmd *cobra.Command, args []string) (err error) {
	var lines document.Lines
	lines, err = document.Read(sectionizeResume)
	if err != nil {
		return err
	}

	data := sections.Detect(lines)
	if len(data.Sections) == 0 {
		err = errors.New("no section headings detected; add headings like EXPERIENCE or Skills:")
		return err
	}

	path := sectionsPath(sectionizeResume)
	err = data.Save(path)
	if err != nil {
		return err
	}

	fmt.Println(data.Format())
	fmt.Printf("\nSection map written to %s\n", path)

	return err
}
