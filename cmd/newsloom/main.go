// Command newsloom is the Operator CLI: seeds sources, runs the ingest/
// enrich/cleanup pipeline stages on demand or on a schedule, serves the
// Read API, and reports process status. Built on github.com/spf13/cobra,
// grounded on rcliao-briefly's cmd/handlers package (one NewXxxCmd()
// constructor per subcommand, flags bound with cmd.Flags(), a root command
// that just assembles them).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "newsloom",
		Short: "Cross-source news aggregation and bias-analysis pipeline",
	}

	root.AddCommand(
		newSeedSourcesCmd(),
		newIngestCmd(),
		newEnrichCmd(),
		newFullCmd(),
		newScheduleCmd(),
		newCleanupCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
