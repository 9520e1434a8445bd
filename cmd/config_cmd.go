package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/bookshelf/bookshelf/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and initialise the bookshelf configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective config (credentials masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Current configuration:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  MongoDB:\n")
		fmt.Fprintf(out, "    URI:            %s\n", redactURI(cfg.Mongo.URI))
		fmt.Fprintf(out, "    Database:       %s\n", cfg.Mongo.Database)
		fmt.Fprintf(out, "    Collection:     %s\n", cfg.Mongo.Collection)
		fmt.Fprintf(out, "    Timeout:        %s\n", cfg.Mongo.ConnectTimeout)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Logging:\n")
		fmt.Fprintf(out, "    Level:          %s\n", cfg.Logging.Level)
		fmt.Fprintf(out, "    Directory:      %s\n", orNone(cfg.Logging.Directory))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Output:           %s\n", cfg.Output)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.ExpandHome(config.DefaultPath)
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
		return nil
	},
}

// redactURI hides the password of a connection string.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}
	return u.Redacted()
}

func orNone(s string) string {
	if s == "" {
		return "(stderr only)"
	}
	return s
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
