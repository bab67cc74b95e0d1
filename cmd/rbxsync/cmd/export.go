package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rbxsync/rbxsync/pkg/errors"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the universe's live resource listing",
	Long: `Export gathers the universe's live game passes, developer products and
badges and writes them as a Luau module (for requiring from game code) or
as YAML.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "luau", "output format: luau or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	snapshot, err := client.Export(cmd.Context())
	if err != nil {
		return err
	}

	var data []byte
	switch exportFormat {
	case "luau":
		data = []byte(snapshot.Luau())
	case "yaml":
		data, err = snapshot.YAML()
		if err != nil {
			return err
		}
	default:
		return errors.NewValidationError("format", exportFormat, `must be "luau" or "yaml"`)
	}

	if exportOutput == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return errors.WrapIO("write", exportOutput, err)
	}
	return nil
}
