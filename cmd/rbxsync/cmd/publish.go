package cmd

import (
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the project's place files",
	Long: `Publish uploads every place file marked publish: true in rbxsync.yaml
as a new published version. Places are not tracked in the state ledger;
every invocation publishes a fresh version.`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	return client.Publish(cmd.Context())
}
