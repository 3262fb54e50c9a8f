package cli

import (
	"fmt"

	"github.com/javanstorm/vmctl/internal/vm"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a VM",
	Long: `Start a vmstart helper process with the given system disk.

Launch parameters fall back to the persisted defaults ('vmctl config')
when not given explicitly. By default the helper is detached into the
background with its output captured to a per-VM log file.`,
	RunE: runStart,
}

var (
	startDisk       string
	startName       string
	startCPU        int
	startMemory     string
	startSeed       string
	startBinary     string
	startForeground bool
)

func init() {
	startCmd.Flags().StringVarP(&startDisk, "disk", "d", "", "system disk image path (RAW format)")
	startCmd.Flags().StringVarP(&startName, "name", "n", "", "VM name (default: auto-generated)")
	startCmd.Flags().IntVarP(&startCPU, "cpu", "c", 0, "number of CPU cores")
	startCmd.Flags().StringVarP(&startMemory, "memory", "m", "", "memory size, e.g. 2G or 512M")
	startCmd.Flags().StringVarP(&startSeed, "seed", "s", "", "seed.iso path (for cloud-init)")
	startCmd.Flags().StringVarP(&startBinary, "binary", "b", "", "vmstart binary path")
	startCmd.Flags().BoolVarP(&startForeground, "foreground", "f", false, "run in the foreground")
}

func runStart(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	// Explicit flags override persisted defaults.
	opts := vm.StartOptions{
		Name:       startName,
		Disk:       startDisk,
		CPU:        startCPU,
		Memory:     startMemory,
		Seed:       startSeed,
		Binary:     startBinary,
		Foreground: startForeground,
	}
	if opts.Disk == "" {
		opts.Disk = e.store.Disk()
	}
	if opts.CPU == 0 {
		opts.CPU = e.store.CPU()
	}
	if opts.Memory == "" {
		opts.Memory = e.store.Memory()
	}
	if opts.Seed == "" {
		opts.Seed = e.store.Seed()
	}
	if opts.Binary == "" {
		opts.Binary = e.store.Binary()
	}

	fmt.Println("Starting VM...")
	fmt.Printf("  Disk:   %s\n", opts.Disk)
	fmt.Printf("  CPU:    %d cores\n", opts.CPU)
	fmt.Printf("  Memory: %s\n", opts.Memory)
	if opts.Foreground {
		fmt.Println("Running in foreground, press Ctrl+C to stop...")
	}

	res, err := e.manager.Start(opts)
	if err != nil {
		return err
	}

	if opts.Foreground {
		fmt.Printf("VM '%s' exited\n", res.Record.Name)
		return nil
	}

	fmt.Printf("VM '%s' started in background\n", res.Record.Name)
	fmt.Printf("  PID: %d\n", res.Record.PID)
	fmt.Printf("  Log: %s\n", res.LogPath)
	fmt.Println()
	fmt.Printf("Use 'vmctl stop %s' to stop it\n", res.Record.Name)
	fmt.Printf("Use 'vmctl logs %s' to view its logs\n", res.Record.Name)
	return nil
}
