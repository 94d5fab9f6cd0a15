package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/planwatch/internal/output"
)

const defaultTermWidth = 80

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long: `Displays full details of a single task including its markdown body.
ID may be a full task id or a unique prefix of at least 4 characters.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	t, err := svc.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	if format == output.FormatCompact {
		output.TaskDetailCompact(os.Stdout, t)
		return nil
	}

	output.TaskDetail(os.Stdout, t, termWidth())
	return nil
}

// termWidth returns the stdout terminal width, or defaultTermWidth when
// stdout is not a terminal.
func termWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultTermWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}
