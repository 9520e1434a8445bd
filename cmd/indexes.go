package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bookshelf/bookshelf/internal/tasks"
)

var indexingParams = tasks.DefaultIndexing()

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the title and author/year indexes and compare query plans",
	Long: `Create an index on title and a compound index on author and published_year.
Re-running is safe: an index that already exists with the same keys is left as is.
Afterwards the execution statistics of a title lookup, with and without a hint,
and of a compound author/year query are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, "indexes", tasks.Indexing(indexingParams))
	},
}

func init() {
	indexesCmd.Flags().StringVar(&indexingParams.ProbeTitle, "probe-title", indexingParams.ProbeTitle, "title used for the explain comparison")
	rootCmd.AddCommand(indexesCmd)
}
