package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent project activity",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "number of entries to show (0 for all)") //nolint:mnd // default page
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := project.ReadLog(cfg.Dir(), limit)
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		if entries == nil {
			entries = []project.LogEntry{}
		}
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.LogCompact(os.Stdout, entries)
	default:
		output.LogTable(os.Stdout, entries)
	}
	return nil
}
