package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persisted defaults",
	Long: `Show or change the persisted launch defaults.

Without a flag the effective configuration is printed. --set updates a
single key; integer values are stored as numbers. --reset deletes the
config file, restoring built-in defaults.`,
	RunE: runConfig,
}

var (
	configShow  bool
	configSet   string
	configReset bool
)

func init() {
	configCmd.Flags().BoolVar(&configShow, "show", false, "show the current configuration")
	configCmd.Flags().StringVar(&configSet, "set", "", "set a configuration key (KEY=VALUE)")
	configCmd.Flags().BoolVar(&configReset, "reset", false, "reset to built-in defaults")
}

func runConfig(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	switch {
	case configSet != "":
		key, value, ok := strings.Cut(configSet, "=")
		if !ok {
			return fmt.Errorf("--set expects KEY=VALUE, got %q", configSet)
		}
		if err := e.store.Set(key, value); err != nil {
			return err
		}
		fmt.Printf("Config updated: %s = %s\n", key, value)
		return nil

	case configReset:
		if err := e.store.Reset(); err != nil {
			return err
		}
		fmt.Println("Config reset to defaults")
		return nil

	default:
		// --show and the bare command both print the effective config.
		data, err := json.MarshalIndent(e.store.All(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
}
