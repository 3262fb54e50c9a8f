package vm

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Launch parameters are passed to the helper binary through its
// environment. This is the whole contract: the helper's exit code and
// output are not interpreted.
const (
	envDisk   = "VMCTL_DISK"
	envCPU    = "VMCTL_CPU"
	envMemory = "VMCTL_MEMORY"
	envName   = "VMCTL_NAME"
	envSeed   = "VMCTL_SEED"
)

// StartOptions are the resolved launch parameters for one VM. Explicit
// command-line values are merged over configured defaults before the
// options reach the manager.
type StartOptions struct {
	// Name identifies the VM. Empty auto-generates vm-<unix timestamp>.
	Name string

	// Disk is the system disk image path. Must exist.
	Disk string

	// Seed is the seed image path for cloud-init. Missing is a warning,
	// not an error.
	Seed string

	// Binary is the helper executable to spawn. Must exist.
	Binary string

	// CPU is the virtual CPU count.
	CPU int

	// Memory is the human-readable memory size, e.g. "2G".
	Memory string

	// Foreground blocks until the helper exits instead of detaching it.
	Foreground bool
}

// StartResult describes a successful launch.
type StartResult struct {
	Record Record

	// LogPath is the helper's log file. Empty in foreground mode, where
	// output goes to the terminal.
	LogPath string
}

// Start spawns the VM helper and registers it. The record is persisted
// only after the spawn returns a PID, so a failure before that point
// leaves no orphaned entry.
func (m *Manager) Start(opts StartOptions) (*StartResult, error) {
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("vm-%d", time.Now().Unix())
	}

	// Reject a duplicate name while the earlier process is confirmed
	// live. Two racing invocations can still both pass this check; the
	// tool does not guard against concurrent copies of itself.
	records, err := m.registry.List()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Name == name {
			return nil, fmt.Errorf("VM '%s' is already running (PID %d)", name, rec.PID)
		}
	}

	if _, err := os.Stat(opts.Disk); err != nil {
		return nil, fmt.Errorf("disk image '%s' does not exist", opts.Disk)
	}
	absDisk, err := filepath.Abs(opts.Disk)
	if err != nil {
		return nil, fmt.Errorf("resolve disk path: %w", err)
	}

	if _, err := os.Stat(opts.Binary); err != nil {
		return nil, fmt.Errorf("helper binary '%s' does not exist", opts.Binary)
	}

	// A missing seed image downgrades the launch rather than failing it.
	absSeed := ""
	if _, err := os.Stat(opts.Seed); err == nil {
		absSeed, err = filepath.Abs(opts.Seed)
		if err != nil {
			return nil, fmt.Errorf("resolve seed path: %w", err)
		}
	} else {
		fmt.Fprintf(m.out, "Warning: seed image '%s' not found, cloud-init may not work\n", opts.Seed)
	}

	memBytes, err := ParseMemory(opts.Memory)
	if err != nil {
		return nil, err
	}

	launch := LaunchConfig{
		CPU:         opts.CPU,
		Memory:      opts.Memory,
		MemoryBytes: memBytes,
		Disk:        absDisk,
		Seed:        absSeed,
	}

	env := append(os.Environ(),
		envDisk+"="+absDisk,
		envCPU+"="+strconv.Itoa(opts.CPU),
		envMemory+"="+strconv.FormatInt(memBytes, 10),
		envName+"="+name,
	)
	if absSeed != "" {
		env = append(env, envSeed+"="+absSeed)
	}

	signHelper(opts.Binary)

	if opts.Foreground {
		return m.startForeground(name, opts.Binary, env, launch, absDisk)
	}
	return m.startBackground(name, opts.Binary, env, launch, absDisk)
}

// startBackground detaches the helper into its own session with its
// output redirected to the per-name log file.
func (m *Manager) startBackground(name, binary string, env []string, launch LaunchConfig, disk string) (*StartResult, error) {
	if err := os.MkdirAll(m.registry.RunDir(), 0755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	logPath := m.registry.LogPath(name)
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(binary)
	cmd.Env = env
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start helper: %w", err)
	}

	rec := newRecord(name, cmd.Process.Pid, disk, launch)
	if err := m.registry.Save(&rec); err != nil {
		return nil, err
	}

	// Release the child so it outlives us.
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()

	m.logger.Debug("helper detached", zap.String("name", name), zap.Int("pid", pid))
	return &StartResult{Record: rec, LogPath: logPath}, nil
}

// startForeground runs the helper attached to the terminal and blocks
// until it exits. An interrupt forwards SIGTERM to the child, and the
// record is deregistered on every exit path.
func (m *Manager) startForeground(name, binary string, env []string, launch LaunchConfig, disk string) (*StartResult, error) {
	cmd := exec.Command(binary)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start helper: %w", err)
	}

	rec := newRecord(name, cmd.Process.Pid, disk, launch)
	if err := m.registry.Save(&rec); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}
	defer func() {
		_ = m.registry.Remove(name)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(m.out, "\nStopping VM...")
			_ = cmd.Process.Signal(syscall.SIGTERM)
		case <-done:
		}
	}()

	// The helper's exit status is not interpreted.
	if err := cmd.Wait(); err != nil {
		m.logger.Debug("helper exited", zap.String("name", name), zap.Error(err))
	}
	close(done)

	return &StartResult{Record: rec}, nil
}

func newRecord(name string, pid int, disk string, launch LaunchConfig) Record {
	return Record{
		Name:      name,
		PID:       pid,
		Disk:      disk,
		StartedAt: time.Now().Format(time.RFC3339),
		Config:    launch,
	}
}

// signHelper re-signs the helper binary against its entitlements file
// when one is present in the working directory. Best effort; the spawn
// proceeds regardless.
func signHelper(binary string) {
	if runtime.GOOS != "darwin" {
		return
	}
	const entitlements = "vmstart.entitlements"
	if _, err := os.Stat(entitlements); err != nil {
		return
	}
	_ = exec.Command("codesign", "--sign", "-", "--entitlements", entitlements, "--force", binary).Run()
}
