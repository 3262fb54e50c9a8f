package testutil

import (
	"syscall"
	"testing"
)

func TestFakeProcessLiveness(t *testing.T) {
	f := NewFakeProcess()

	if f.Alive(100) {
		t.Error("unknown PID reported alive")
	}

	f.SetLive(100, true)
	if !f.Alive(100) {
		t.Error("live PID reported dead")
	}
	if got := f.Probes(100); got != 2 {
		t.Errorf("probes = %d, want 2", got)
	}
}

func TestFakeProcessSignals(t *testing.T) {
	f := NewFakeProcess()

	if err := f.Signal(100, syscall.SIGTERM); err != syscall.ESRCH {
		t.Errorf("signal to dead PID = %v, want ESRCH", err)
	}

	f.SetLive(100, true)
	f.DieOn(syscall.SIGTERM)
	if err := f.Signal(100, syscall.SIGTERM); err != nil {
		t.Fatalf("Signal failed: %v", err)
	}
	if f.Alive(100) {
		t.Error("PID alive after fatal signal")
	}

	sent := f.Sent()
	if len(sent) != 1 || sent[0].PID != 100 || sent[0].Sig != syscall.SIGTERM {
		t.Errorf("sent = %v, want one SIGTERM to 100", sent)
	}
}

func TestFakeProcessFailSignals(t *testing.T) {
	f := NewFakeProcess()
	f.SetLive(100, true)
	f.FailSignals(100, syscall.EPERM)

	if err := f.Signal(100, syscall.SIGKILL); err != syscall.EPERM {
		t.Errorf("Signal = %v, want EPERM", err)
	}
	if !f.Alive(100) {
		t.Error("failed signal changed liveness")
	}
}
