package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show VM status",
	Long: `Show a summary of all running VMs, or the full detail of one VM
when a name is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	// No target: summary count plus the regular listing.
	if len(args) == 0 {
		records, err := e.manager.List()
		if err != nil {
			return err
		}
		fmt.Printf("Running VMs: %d\n", len(records))
		if len(records) == 0 {
			return nil
		}
		return renderList(records, statusJSON)
	}

	name := args[0]
	rec, err := e.manager.Get(name)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("VM '%s' is not running", name)
	}

	if statusJSON {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("VM: %s\n", rec.Name)
	fmt.Println("  State:   running")
	fmt.Printf("  PID:     %d\n", rec.PID)
	fmt.Printf("  Disk:    %s\n", rec.Disk)
	fmt.Printf("  Started: %s\n", formatStarted(rec.StartedAt))
	fmt.Printf("  CPU:     %d cores\n", rec.Config.CPU)
	fmt.Printf("  Memory:  %s\n", rec.Config.Memory)
	if rec.Config.Seed != "" {
		fmt.Printf("  Seed:    %s\n", rec.Config.Seed)
	}
	return nil
}
