package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/export"
)

// exportsCommand creates the export folder management command.
func (c *CLI) exportsCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "exports",
		Short: "Manage the export folder",
	}
	cmd.PersistentFlags().StringVarP(&dir, "dir", "d", "", "export directory (default from config)")

	cmd.AddCommand(c.exportsListCommand(&dir))
	cmd.AddCommand(c.exportsSweepCommand(&dir))
	cmd.AddCommand(c.exportsPurgeCommand(&dir))
	cmd.AddCommand(c.exportsPathCommand(&dir))

	return cmd
}

// exportWriter opens the export folder named by dir or by the config file.
func (c *CLI) exportWriter(dir string) (*export.Writer, int, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, 0, err
	}
	if dir == "" {
		dir = cfg.Export.Dir
	}
	return export.NewWriter(dir, export.WithLogger(c.Logger)), cfg.Retention.SweepDays, nil
}

// exportsListCommand creates the "exports list" subcommand.
func (c *CLI) exportsListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exported files, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := c.exportWriter(*dir)
			if err != nil {
				return err
			}
			entries, err := w.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("Export folder is empty")
				printDetail("Directory: %s", w.Dir())
				return nil
			}
			writeExportTable(cmd.OutOrStdout(), entries)
			printDetail("%d files in %s", len(entries), w.Dir())
			return nil
		},
	}
}

// exportsSweepCommand creates the "exports sweep" subcommand.
func (c *CLI) exportsSweepCommand(dir *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete exports older than --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, sweepDays, err := c.exportWriter(*dir)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = sweepDays
			}
			if err := errors.ValidateRetentionDays(days); err != nil {
				return err
			}
			res, err := w.Sweep(cmd.Context(), export.Days(days))
			printRetention(res, w.Dir())
			return err
		},
	}

	cmd.Flags().IntVar(&days, "days", export.SweepDays, "age threshold in days")

	return cmd
}

// exportsPurgeCommand creates the "exports purge" subcommand.
func (c *CLI) exportsPurgeCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete every export",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := c.exportWriter(*dir)
			if err != nil {
				return err
			}
			res, err := w.Purge(cmd.Context())
			printRetention(res, w.Dir())
			return err
		},
	}
}

// exportsPathCommand creates the "exports path" subcommand.
func (c *CLI) exportsPathCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the export directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := c.exportWriter(*dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), w.Dir())
			return nil
		},
	}
}

func printRetention(res export.SweepResult, dir string) {
	if len(res.Deleted) == 0 {
		printInfo("%s", res.Message)
		return
	}
	printSuccess("%s", res.Message)
	for _, name := range res.Deleted {
		printDetail("%s", name)
	}
	printDetail("Directory: %s", dir)
}
