package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Configuration keys understood by the store.
const (
	KeyCPU         = "default_cpu"
	KeyMemory      = "default_memory"
	KeyDisk        = "default_disk"
	KeyBinary      = "vmstart_binary"
	KeySeed        = "seed_iso"
	KeyEFIVarStore = "efi_var_store"
)

// Store holds persisted launch defaults. Values resolve in the usual
// order: explicit flags beat environment, environment beats the config
// file, the file beats built-in defaults.
type Store struct {
	v    *viper.Viper
	path string
}

// NewStore creates a store backed by the JSON document at path. The
// file does not need to exist.
func NewStore(path string) *Store {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault(KeyCPU, 2)
	v.SetDefault(KeyMemory, "2G")
	v.SetDefault(KeyDisk, "ubuntu.raw")
	v.SetDefault(KeyBinary, "./vmstart")
	v.SetDefault(KeySeed, "seed.iso")
	v.SetDefault(KeyEFIVarStore, "efi_vars.store")

	// Environment overrides: VMCTL_DEFAULT_CPU, VMCTL_VMSTART_BINARY, ...
	v.SetEnvPrefix("VMCTL")
	v.AutomaticEnv()

	return &Store{v: v, path: path}
}

// Load reads the config file. A missing file is not an error; built-in
// defaults apply.
func (s *Store) Load() error {
	if err := s.v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// All returns every effective setting, defaults included.
func (s *Store) All() map[string]any {
	return s.v.AllSettings()
}

// Set updates one key and persists the merged document. Values that
// parse as integers are stored as numbers, everything else as strings.
func (s *Store) Set(key, raw string) error {
	var value any = raw
	if n, err := strconv.Atoi(raw); err == nil {
		value = n
	}
	s.v.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Reset deletes the config file, restoring built-in defaults. Resetting
// an absent file is not an error.
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove config: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// CPU returns the default virtual CPU count.
func (s *Store) CPU() int {
	return s.v.GetInt(KeyCPU)
}

// Memory returns the default memory size spec.
func (s *Store) Memory() string {
	return s.v.GetString(KeyMemory)
}

// Disk returns the default system disk image path.
func (s *Store) Disk() string {
	return s.v.GetString(KeyDisk)
}

// Binary returns the helper binary path.
func (s *Store) Binary() string {
	return s.v.GetString(KeyBinary)
}

// Seed returns the default seed image path.
func (s *Store) Seed() string {
	return s.v.GetString(KeySeed)
}
