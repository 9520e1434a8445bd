package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bookshelf/bookshelf/internal/tasks"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the MongoDB server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, "ping", tasks.Ping())
	},
}

var seedParams tasks.SeedParams
var seedKeep bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the fixture books into the collection",
	Long: `Replace the collection with the twelve fixture books the other commands
are written against. --extra adds generated books; the same --seed always
generates the same books.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seedParams.Drop = !seedKeep
		return runMutatingTask(cmd, "seed", tasks.Seed(seedParams))
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedParams.Extra, "extra", 0, "number of generated books to add")
	f.Int64Var(&seedParams.Seed, "seed", 1, "generator seed for --extra")
	f.BoolVar(&seedKeep, "no-drop", false, "keep existing documents instead of dropping the collection")
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(seedCmd)
}
