// Package config provides configuration management for vmctl.
package config

import (
	"os"
	"path/filepath"
)

// Paths holds the directory layout for vmctl's on-disk state.
type Paths struct {
	// BaseDir is the root for all vmctl state: ~/.vmctl
	BaseDir string

	// RunDir holds one record file and one log file per VM: ~/.vmctl/run
	RunDir string

	// ConfigFile is the persisted defaults document: ~/.vmctl/config.json
	ConfigFile string
}

// GetPaths returns the home-rooted paths for vmctl.
func GetPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	base := filepath.Join(home, ".vmctl")
	return &Paths{
		BaseDir:    base,
		RunDir:     filepath.Join(base, "run"),
		ConfigFile: filepath.Join(base, "config.json"),
	}, nil
}

// EnsureDirectories creates the base and run directories if absent.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.BaseDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(p.RunDir, 0755)
}
