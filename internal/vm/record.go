package vm

// LaunchConfig is the immutable snapshot of launch parameters captured
// when a VM is started.
type LaunchConfig struct {
	// CPU is the number of virtual CPU cores.
	CPU int `json:"cpu"`

	// Memory is the memory size as given on the command line, e.g. "2G".
	Memory string `json:"memory"`

	// MemoryBytes is Memory resolved to a byte count.
	MemoryBytes int64 `json:"memory_bytes"`

	// Disk is the absolute path to the system disk image.
	Disk string `json:"disk"`

	// Seed is the absolute path to the seed image, empty when the seed
	// image was missing at launch time.
	Seed string `json:"seed,omitempty"`
}

// Record tracks one spawned VM helper process. A record exists exactly
// as long as the tool believes the process may still be running.
type Record struct {
	Name string `json:"name"`
	PID  int    `json:"pid"`
	Disk string `json:"disk"`

	// StartedAt is kept as the stored string so a malformed value can
	// still be displayed verbatim.
	StartedAt string `json:"started_at"`

	Config LaunchConfig `json:"config"`
}
