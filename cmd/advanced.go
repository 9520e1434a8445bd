package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookshelf/bookshelf/internal/tasks"
)

var advancedParams = tasks.DefaultAdvanced()

var advancedCmd = &cobra.Command{
	Use:   "advanced",
	Short: "Run compound filters, projection, sorting and pagination",
	RunE: func(cmd *cobra.Command, args []string) error {
		if advancedParams.PageSize <= 0 {
			return fmt.Errorf("--page-size must be positive, got %d", advancedParams.PageSize)
		}
		return runTask(cmd, "advanced", tasks.Advanced(advancedParams))
	},
}

func init() {
	f := advancedCmd.Flags()
	f.IntVar(&advancedParams.InStockAfter, "after", advancedParams.InStockAfter, "list in-stock books published after this year")
	f.StringVar(&advancedParams.Genre, "genre", advancedParams.Genre, "genre for the projection query")
	f.Int64Var(&advancedParams.PageSize, "page-size", advancedParams.PageSize, "books per page")
	f.Int64Var(&advancedParams.Pages, "pages", advancedParams.Pages, "number of pages to print")
	rootCmd.AddCommand(advancedCmd)
}
