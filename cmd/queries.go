package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bookshelf/bookshelf/internal/tasks"
)

var queriesParams = tasks.DefaultQueries()

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Run the basic finds, a price update and a delete",
	Long: `Find books by genre, by publication year and by author, update the price
of one book and delete another by title. Both mutations are verified with a
follow-up read. A title that matches nothing is reported, not treated as an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutatingTask(cmd, "queries", tasks.Queries(queriesParams))
	},
}

func init() {
	f := queriesCmd.Flags()
	f.StringVar(&queriesParams.Genre, "genre", queriesParams.Genre, "genre to list")
	f.IntVar(&queriesParams.PublishedAfter, "after", queriesParams.PublishedAfter, "list books published after this year")
	f.StringVar(&queriesParams.Author, "author", queriesParams.Author, "author to list")
	f.StringVar(&queriesParams.UpdateTitle, "update-title", queriesParams.UpdateTitle, "title of the book whose price is updated")
	f.Float64Var(&queriesParams.NewPrice, "price", queriesParams.NewPrice, "new price for --update-title")
	f.StringVar(&queriesParams.DeleteTitle, "delete-title", queriesParams.DeleteTitle, "title of the book to delete")
	rootCmd.AddCommand(queriesCmd)
}
