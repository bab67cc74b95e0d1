package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rbxsync/rbxsync/pkg/sync"
)

var (
	dryRun      bool
	failFast    bool
	syncTimeout time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile declared resources with the live universe",
	Long: `Sync reads the project's rbxsync.yaml, reconciles every declared game
pass, developer product and badge against the live universe, and records
the outcome in the state ledger.

Resources are matched by name. Resources that already exist (created by an
earlier run or by hand) are updated in place; unknown ones are created.
Icons are uploaded only when their file content changed since the last
successful sync.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and report without mutating anything")
	syncCmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first resource failure")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 0, "overall run timeout (0 = none)")
}

func runSync(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	result, err := client.Sync(cmd.Context(),
		sync.WithDryRun(dryRun),
		sync.WithFailFast(failFast),
		sync.WithTimeout(syncTimeout),
	)
	if err != nil {
		return err
	}

	fmt.Println(result.Summary())
	for _, res := range result.Resources {
		if res.Failed() {
			fmt.Printf("  %s %q: %v\n", res.Category, res.Name, res.Err)
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("sync finished with failures")
	}
	return nil
}
