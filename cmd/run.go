package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/bookshelf/bookshelf/internal/bookstore"
	"github.com/bookshelf/bookshelf/internal/lock"
	"github.com/bookshelf/bookshelf/internal/tasks"
)

// runMutatingTask runs a task that writes to the collection while holding the
// collection lock.
func runMutatingTask(cmd *cobra.Command, name string, task tasks.Task) error {
	path := lock.Path(cfg.Mongo.Database, cfg.Mongo.Collection)
	if err := lock.Acquire(path); err != nil {
		return err
	}
	defer func() {
		if rerr := lock.Release(path); rerr != nil {
			logger.Warn("releasing lock", "path", path, "error", rerr)
		}
	}()
	return runTask(cmd, name, task)
}

// runTask runs one task inside its own session.
func runTask(cmd *cobra.Command, name string, task tasks.Task) error {
	log := logger.With("task", name, "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
	log.Debug("starting task")
	return bookstore.WithSession(cmd.Context(), openStore(cfg.Mongo, log), log, func(ctx context.Context, s bookstore.Store) error {
		return task(ctx, s, printer)
	})
}

var continueOnError bool

var runAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "Run queries, advanced, aggregations and indexes in sequence",
	Long: `Run every query task one after another, each with its own connection.
By default the first failure stops the run; --continue-on-error logs it and moves on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := lock.Path(cfg.Mongo.Database, cfg.Mongo.Collection)
		if err := lock.Acquire(path); err != nil {
			return err
		}
		defer func() {
			if rerr := lock.Release(path); rerr != nil {
				logger.Warn("releasing lock", "path", path, "error", rerr)
			}
		}()

		all := []tasks.Named{
			{Name: "queries", Run: tasks.Queries(tasks.DefaultQueries())},
			{Name: "advanced", Run: tasks.Advanced(tasks.DefaultAdvanced())},
			{Name: "aggregations", Run: tasks.Aggregations(tasks.DefaultAggregations())},
			{Name: "indexes", Run: tasks.Indexing(tasks.DefaultIndexing())},
		}

		var errs []error
		for _, t := range all {
			if err := runTask(cmd, t.Name, t.Run); err != nil {
				if !continueOnError {
					return err
				}
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	},
}

func init() {
	runAllCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "keep going after a failed task")
	rootCmd.AddCommand(runAllCmd)
}
