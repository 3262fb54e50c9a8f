package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPollInterval is the pause between liveness probes while
	// waiting for a gracefully stopped process to exit.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultPollAttempts bounds the graceful wait before escalating to
	// SIGKILL.
	DefaultPollAttempts = 10
)

// ManagerConfig holds the collaborators and tuning for a Manager.
type ManagerConfig struct {
	// Registry is the record store. Required.
	Registry *Registry

	// Prober checks process liveness. Required.
	Prober Prober

	// Signaler delivers signals to processes. Required.
	Signaler Signaler

	// Logger receives diagnostics. Defaults to a nop logger.
	Logger *zap.Logger

	// PollInterval and PollAttempts bound the graceful-stop wait.
	// Zero values take the defaults.
	PollInterval time.Duration
	PollAttempts int

	// Out receives progress and warning messages. Defaults to stdout.
	Out io.Writer
}

// Manager orchestrates the VM helper lifecycle: spawn and register,
// signal and deregister, and reconciliation of entries whose process
// died outside the tool's control.
type Manager struct {
	registry     *Registry
	prober       Prober
	signaler     Signaler
	logger       *zap.Logger
	pollInterval time.Duration
	pollAttempts int
	out          io.Writer
}

// NewManager creates a Manager, applying defaults for optional fields.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollAttempts == 0 {
		cfg.PollAttempts = DefaultPollAttempts
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	return &Manager{
		registry:     cfg.Registry,
		prober:       cfg.Prober,
		signaler:     cfg.Signaler,
		logger:       cfg.Logger,
		pollInterval: cfg.PollInterval,
		pollAttempts: cfg.PollAttempts,
		out:          cfg.Out,
	}
}

// Registry returns the manager's record store.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// List returns all live records, pruning dead entries as a side effect.
func (m *Manager) List() ([]Record, error) {
	return m.registry.List()
}

// Get returns the live record with the given name, or nil.
func (m *Manager) Get(name string) (*Record, error) {
	records, err := m.registry.List()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Name == name {
			return &records[i], nil
		}
	}
	return nil, nil
}

// StopResult describes the outcome of stopping one VM.
type StopResult struct {
	Name string
	PID  int

	// AlreadyGone is set when the process had exited before or while we
	// were signaling it. The desired end state holds, so this is success.
	AlreadyGone bool

	// Forced is set when SIGKILL was issued, either on request or after
	// the graceful wait budget ran out.
	Forced bool
}

// Stop terminates one VM, resolved by name first and then by PID. A
// record whose process already died is settled as success: the desired
// end state holds, so the stale record is simply reclaimed.
func (m *Manager) Stop(target string, force bool) (*StopResult, error) {
	rec, live, err := m.registry.Find(target)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("VM '%s' not found", target)
	}
	if !live {
		if err := m.registry.Remove(rec.Name); err != nil {
			return nil, err
		}
		return &StopResult{Name: rec.Name, PID: rec.PID, AlreadyGone: true}, nil
	}
	return m.stopRecord(*rec, force)
}

// StopAll applies the stop procedure to every live record. No live
// records is a no-op success with an empty result.
func (m *Manager) StopAll(force bool) ([]StopResult, error) {
	records, err := m.registry.List()
	if err != nil {
		return nil, err
	}

	var results []StopResult
	var firstErr error
	for _, rec := range records {
		res, err := m.stopRecord(rec, force)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, *res)
	}
	return results, firstErr
}

// stopRecord signals the record's process and deregisters it. Graceful
// stops send SIGTERM, wait within the poll budget, then escalate to
// SIGKILL; forced stops skip straight to SIGKILL.
func (m *Manager) stopRecord(rec Record, force bool) (*StopResult, error) {
	res := &StopResult{Name: rec.Name, PID: rec.PID}
	fmt.Fprintf(m.out, "Stopping VM '%s' (PID %d)...\n", rec.Name, rec.PID)

	kill := force
	if !force {
		if err := m.signaler.Signal(rec.PID, syscall.SIGTERM); err != nil {
			return m.signalOutcome(rec, res, err)
		}
		m.logger.Debug("sent SIGTERM", zap.String("name", rec.Name), zap.Int("pid", rec.PID))

		if WaitGone(m.prober, rec.PID, m.pollInterval, m.pollAttempts) {
			kill = false
		} else {
			fmt.Fprintln(m.out, "Process not responding, force killing...")
			kill = true
		}
	}

	if kill {
		res.Forced = true
		if err := m.signaler.Signal(rec.PID, syscall.SIGKILL); err != nil {
			return m.signalOutcome(rec, res, err)
		}
		m.logger.Debug("sent SIGKILL", zap.String("name", rec.Name), zap.Int("pid", rec.PID))
	}

	if err := m.registry.Remove(rec.Name); err != nil {
		return nil, err
	}
	return res, nil
}

// signalOutcome classifies a signal failure. A vanished process is a
// success with the record reclaimed; a permission failure is reported
// with the record left intact so the caller can retry.
func (m *Manager) signalOutcome(rec Record, res *StopResult, err error) (*StopResult, error) {
	if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
		if rmErr := m.registry.Remove(rec.Name); rmErr != nil {
			return nil, rmErr
		}
		res.AlreadyGone = true
		return res, nil
	}
	if errors.Is(err, syscall.EPERM) || errors.Is(err, os.ErrPermission) {
		return nil, fmt.Errorf("no permission to stop process %d", rec.PID)
	}
	return nil, fmt.Errorf("signal process %d: %w", rec.PID, err)
}
