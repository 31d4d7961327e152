package cmd

import (
	"fmt"

	"github.com/loomcli/loom/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Create a configuration file with sensible defaults at
$HOME/.loom/config.json (or the path given by --config).

Edit the generated file to set your API key, or export
ANTHROPIC_API_KEY instead.`,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	err = config.InitConfig(getConfigFile())
	if err != nil {
		return err
	}

	path := getConfigFile()
	if path == "" {
		path = "$HOME/.loom/config.json"
	}
	fmt.Printf("Created %s\n", path)
	fmt.Println("Set anthropic_api_key in the config or export ANTHROPIC_API_KEY.")

	return err
}
