package cli

import (
	"fmt"

	"github.com/javanstorm/vmctl/internal/vm"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop [name|pid]",
	Short: "Stop a VM",
	Long: `Stop a running VM by name or PID.

A graceful stop sends SIGTERM and waits up to five seconds for the
process to exit before force killing it. --force skips straight to
SIGKILL.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

var (
	stopAll   bool
	stopForce bool
)

func init() {
	stopCmd.Flags().BoolVarP(&stopAll, "all", "a", false, "stop all running VMs")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "force stop (SIGKILL)")
}

func runStop(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if stopAll {
		results, err := e.manager.StopAll(stopForce)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No running VMs")
			return nil
		}
		for _, res := range results {
			printStopResult(res)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("specify a VM name or use --all")
	}

	res, err := e.manager.Stop(args[0], stopForce)
	if err != nil {
		return err
	}
	printStopResult(*res)
	return nil
}

func printStopResult(res vm.StopResult) {
	if res.AlreadyGone {
		fmt.Printf("VM '%s' process was already gone\n", res.Name)
		return
	}
	fmt.Printf("VM '%s' stopped\n", res.Name)
}
