package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/javanstorm/vmctl/internal/tail"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs <name>",
	Short: "Show VM logs",
	Long: `Show the captured output of a background VM.

By default the last 50 lines are printed. With --follow the log is
streamed as the helper writes it, until interrupted with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

var (
	logsFollow bool
	logsLines  int
)

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 50, "number of lines to show")
}

func runLogs(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	name := args[0]
	logPath := e.manager.Registry().LogPath(name)
	if _, err := os.Stat(logPath); err != nil {
		return fmt.Errorf("no log file for VM '%s'", name)
	}

	lines, err := tail.LastLines(logPath, logsLines)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}

	if !logsFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tail.Follow(ctx, os.Stdout, logPath)
}
