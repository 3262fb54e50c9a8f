// Package testutil provides common test helpers for vmctl tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
)

// WriteScript creates an executable shell script for use as a stand-in
// VM helper binary and returns its path.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

// WriteFile creates a plain file with the given content, for disk and
// seed image stand-ins.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file %s: %v", name, err)
	}
	return path
}

// SentSignal records one signal delivered through FakeProcess.
type SentSignal struct {
	PID int
	Sig os.Signal
}

// FakeProcess implements vm.Prober and vm.Signaler against an in-memory
// process table, so lifecycle tests run without spawning anything.
type FakeProcess struct {
	mu       sync.Mutex
	live     map[int]bool
	failWith map[int]error
	dieOn    map[syscall.Signal]bool
	sent     []SentSignal
	probes   map[int]int
}

// NewFakeProcess returns an empty fake process table.
func NewFakeProcess() *FakeProcess {
	return &FakeProcess{
		live:     make(map[int]bool),
		failWith: make(map[int]error),
		dieOn:    make(map[syscall.Signal]bool),
		probes:   make(map[int]int),
	}
}

// SetLive marks a PID as alive or dead.
func (f *FakeProcess) SetLive(pid int, live bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[pid] = live
}

// FailSignals makes every signal to pid return err.
func (f *FakeProcess) FailSignals(pid int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith[pid] = err
}

// DieOn makes live processes exit when they receive sig.
func (f *FakeProcess) DieOn(sig syscall.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dieOn[sig] = true
}

// Alive implements vm.Prober, counting probes per PID.
func (f *FakeProcess) Alive(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes[pid]++
	return f.live[pid]
}

// Signal implements vm.Signaler. Signaling a dead PID returns ESRCH,
// like the real thing.
func (f *FakeProcess) Signal(pid int, sig os.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failWith[pid]; ok {
		return err
	}
	if !f.live[pid] {
		return syscall.ESRCH
	}

	f.sent = append(f.sent, SentSignal{PID: pid, Sig: sig})
	if s, ok := sig.(syscall.Signal); ok && f.dieOn[s] {
		f.live[pid] = false
	}
	return nil
}

// Sent returns the signals delivered so far, in order.
func (f *FakeProcess) Sent() []SentSignal {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentSignal, len(f.sent))
	copy(out, f.sent)
	return out
}

// Probes returns how many times pid's liveness was checked.
func (f *FakeProcess) Probes(pid int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes[pid]
}
