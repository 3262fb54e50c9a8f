package vm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Registry is the durable name → process record store. Each record is a
// single JSON file under the run directory; the helper's log sits next to
// it under the same name.
type Registry struct {
	runDir string
	prober Prober
	logger *zap.Logger
}

// NewRegistry creates a registry rooted at runDir.
func NewRegistry(runDir string, prober Prober, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		runDir: runDir,
		prober: prober,
		logger: logger,
	}
}

// RunDir returns the registry's backing directory.
func (r *Registry) RunDir() string {
	return r.runDir
}

// RecordPath returns the record file path for a VM name.
func (r *Registry) RecordPath(name string) string {
	return filepath.Join(r.runDir, name+".json")
}

// LogPath returns the log file path for a VM name.
func (r *Registry) LogPath(name string) string {
	return filepath.Join(r.runDir, name+".log")
}

// Save persists a record, replacing any record with the same name.
// Readers never observe a partial record.
func (r *Registry) Save(rec *Record) error {
	if err := os.MkdirAll(r.runDir, 0755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	// Write atomically
	path := r.RecordPath(rec.Name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename record: %w", err)
	}

	r.logger.Debug("record saved", zap.String("name", rec.Name), zap.Int("pid", rec.PID))
	return nil
}

// Remove deletes the named record. Removing an absent record is not an
// error.
func (r *Registry) Remove(name string) error {
	err := os.Remove(r.RecordPath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove record: %w", err)
	}
	return nil
}

// diskRecord pairs a parsed record with the file it came from, so
// pruning removes exactly what was read.
type diskRecord struct {
	Record
	path string
}

// records reads and parses every record file without touching liveness.
// Unparseable entries are skipped silently so one bad file cannot hide
// the rest.
func (r *Registry) records() ([]diskRecord, error) {
	if err := os.MkdirAll(r.runDir, 0755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(r.runDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan run dir: %w", err)
	}

	var records []diskRecord
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil || rec.Name == "" {
			r.logger.Debug("skipping unparseable entry", zap.String("path", path))
			continue
		}
		records = append(records, diskRecord{Record: rec, path: path})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// List returns all live records sorted by name. Entries whose process is
// gone are deleted as a side effect of this call.
func (r *Registry) List() ([]Record, error) {
	all, err := r.records()
	if err != nil {
		return nil, err
	}

	var live []Record
	for _, dr := range all {
		if dr.PID > 0 && r.prober.Alive(dr.PID) {
			live = append(live, dr.Record)
			continue
		}

		// Process ended outside our control; reclaim the entry.
		r.logger.Debug("pruning dead entry",
			zap.String("name", dr.Name), zap.Int("pid", dr.PID))
		_ = os.Remove(dr.path)
	}
	return live, nil
}

// Find resolves a record by exact name, falling back to treating the key
// as a PID. The bool reports whether the process is confirmed live. A
// name match is returned even when the process is dead, so callers can
// settle the stale record; a PID only matches live records, because a
// dead record's PID may already belong to someone else.
func (r *Registry) Find(key string) (*Record, bool, error) {
	records, err := r.records()
	if err != nil {
		return nil, false, err
	}

	for i := range records {
		if records[i].Name == key {
			rec := &records[i].Record
			return rec, rec.PID > 0 && r.prober.Alive(rec.PID), nil
		}
	}

	if pid, err := strconv.Atoi(strings.TrimSpace(key)); err == nil {
		for i := range records {
			if records[i].PID == pid && r.prober.Alive(pid) {
				return &records[i].Record, true, nil
			}
		}
	}

	return nil, false, nil
}
