// Package cli provides the command-line interface for vmctl.
package cli

import (
	"fmt"

	"github.com/javanstorm/vmctl/internal/config"
	"github.com/javanstorm/vmctl/internal/version"
	"github.com/javanstorm/vmctl/internal/vm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "vmctl",
	Short: "vmctl - manage local VM helper processes",
	Long: `vmctl starts, stops, and inspects vmstart helper processes.

Each started VM is tracked in a small on-disk registry under ~/.vmctl/run.
Entries whose process has died outside of vmctl's control are reclaimed
automatically whenever the registry is read.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		logger = l
		return nil
	},
}

var (
	verbose bool
	logger  = zap.NewNop()
)

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(configCmd)
}

// env bundles the stores every command works against. Both are rooted
// under ~/.vmctl and constructed per invocation, never ambient globals.
type env struct {
	paths   *config.Paths
	store   *config.Store
	manager *vm.Manager
}

func newEnv() (*env, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("determine paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create state dirs: %w", err)
	}

	store := config.NewStore(paths.ConfigFile)
	if err := store.Load(); err != nil {
		return nil, err
	}

	proc := vm.OSProcess{}
	manager := vm.NewManager(vm.ManagerConfig{
		Registry: vm.NewRegistry(paths.RunDir, proc, logger),
		Prober:   proc,
		Signaler: proc,
		Logger:   logger,
	})

	return &env{paths: paths, store: store, manager: manager}, nil
}
