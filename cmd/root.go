package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bookshelf/bookshelf/internal/bookstore"
	"github.com/bookshelf/bookshelf/internal/config"
	"github.com/bookshelf/bookshelf/internal/logging"
	"github.com/bookshelf/bookshelf/internal/report"
)

var (
	cfgFile  string
	logLevel string
	mongoURI string
	database string
	output   string
	version  = "dev"

	cfg     *config.Config
	logger  *slog.Logger
	printer *report.Printer

	// openStore is replaced in tests.
	openStore = bookstore.Opener
)

var rootCmd = &cobra.Command{
	Use:   "bookshelf",
	Short: "Bookshelf: query toolkit for the bookstore collection",
	Long: `Bookshelf runs predefined queries, aggregations and index operations
against the books collection of a MongoDB database and prints the results.

Every command opens its own connection and closes it before exiting.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and builds the logger and
// printer shared by every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil && cmd == configInitCmd && errors.Is(err, fs.ErrNotExist) {
		loaded, err = config.Default(), nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("uri") {
		loaded.Mongo.URI = mongoURI
	}
	if flags.Changed("database") {
		loaded.Mongo.Database = database
	}
	if flags.Changed("log-level") {
		loaded.Logging.Level = logLevel
	}
	if flags.Changed("output") {
		loaded.Output = output
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.Setup(loaded.Logging.Level, loaded.Logging.Directory)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}

	cfg = loaded
	logger = l.With("run_id", uuid.NewString())
	printer = report.NewPrinter(cmd.OutOrStdout(), cfg.Output)
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ~/.bookshelf/bookshelf.yaml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&mongoURI, "uri", config.DefaultURI, "MongoDB connection string")
	pf.StringVar(&database, "database", config.DefaultDatabase, "database holding the books collection")
	pf.StringVarP(&output, "output", "o", config.OutputText, "output format (text, json)")
}
