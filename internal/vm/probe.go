package vm

import (
	"os"
	"syscall"
	"time"
)

// Prober reports whether a PID refers to a live process.
type Prober interface {
	Alive(pid int) bool
}

// Signaler delivers a signal to a process by PID.
type Signaler interface {
	Signal(pid int, sig os.Signal) error
}

// OSProcess probes and signals real processes through the OS.
type OSProcess struct{}

// Alive sends the zero signal to check process existence. A permission
// error also reports false: the PID may belong to a foreign process, and
// treating it as not-confirmed-alive keeps cleanup conservative.
func (OSProcess) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix FindProcess always succeeds; signal 0 does the real check.
	return proc.Signal(syscall.Signal(0)) == nil
}

// Signal delivers sig to the process with the given PID.
func (OSProcess) Signal(pid int, sig os.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(sig)
}

// WaitGone polls the prober until the process disappears or the attempt
// budget is exhausted. Returns true once the process is gone.
func WaitGone(p Prober, pid int, interval time.Duration, attempts int) bool {
	for i := 0; i < attempts; i++ {
		time.Sleep(interval)
		if !p.Alive(pid) {
			return true
		}
	}
	return false
}
