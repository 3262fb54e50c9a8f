package cli

import (
	"fmt"

	"github.com/javanstorm/vmctl/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version, commit hash, and build date of vmctl.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vmctl %s\n", version.Version)
		fmt.Printf("  Commit:     %s\n", version.Commit)
		fmt.Printf("  Build Date: %s\n", version.BuildDate)
	},
}
