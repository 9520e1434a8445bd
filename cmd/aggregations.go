package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookshelf/bookshelf/internal/tasks"
)

var aggregationsParams = tasks.DefaultAggregations()

var aggregationsCmd = &cobra.Command{
	Use:   "aggregations",
	Short: "Report prices by genre, prolific authors and books per decade",
	RunE: func(cmd *cobra.Command, args []string) error {
		if aggregationsParams.TopAuthors <= 0 {
			return fmt.Errorf("--top-authors must be positive, got %d", aggregationsParams.TopAuthors)
		}
		return runTask(cmd, "aggregations", tasks.Aggregations(aggregationsParams))
	},
}

func init() {
	aggregationsCmd.Flags().Int64Var(&aggregationsParams.TopAuthors, "top-authors", aggregationsParams.TopAuthors, "number of authors to list")
	rootCmd.AddCommand(aggregationsCmd)
}
