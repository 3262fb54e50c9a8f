package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/javanstorm/vmctl/internal/vm"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List running VMs",
	Long: `List all running VMs as a table.

Reading the registry also reclaims entries whose process has died, so
the listing always reflects processes that are actually alive.`,
	RunE: runList,
}

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	records, err := e.manager.List()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No running VMs")
		return nil
	}

	return renderList(records, listJSON)
}

// renderList prints records either as JSON or as a fixed-width table.
func renderList(records []vm.Record, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal records: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	rule := strings.Repeat("-", 80)
	fmt.Printf("%-20s %-10s %-30s %-20s\n", "NAME", "PID", "DISK", "STARTED")
	fmt.Println(rule)
	for _, rec := range records {
		fmt.Printf("%-20s %-10d %-30s %-20s\n",
			rec.Name, rec.PID, truncatePath(rec.Disk, 28), formatStarted(rec.StartedAt))
	}
	fmt.Println(rule)
	fmt.Printf("%d VMs running\n", len(records))
	return nil
}

// truncatePath shortens a long path with a leading ellipsis so the tail
// stays visible. Display-only; stored paths are never truncated.
func truncatePath(p string, max int) string {
	if len(p) <= max {
		return p
	}
	return "..." + p[len(p)-(max-3):]
}

// formatStarted renders a stored timestamp in local human-readable form.
// A malformed value is shown verbatim rather than failing the listing.
func formatStarted(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
