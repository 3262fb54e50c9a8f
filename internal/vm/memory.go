package vm

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
)

// ParseMemory converts a human-readable memory size such as "2G", "512M"
// or "1024" into a byte count. A bare number is taken as bytes.
func ParseMemory(s string) (int64, error) {
	spec := strings.ToUpper(strings.TrimSpace(s))
	if spec == "" {
		return 0, fmt.Errorf("empty memory size")
	}

	mult := int64(1)
	switch spec[len(spec)-1] {
	case 'G':
		mult = gib
		spec = spec[:len(spec)-1]
	case 'M':
		mult = mib
		spec = spec[:len(spec)-1]
	case 'K':
		mult = kib
		spec = spec[:len(spec)-1]
	}

	n, err := strconv.ParseInt(spec, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size %q", s)
	}

	return n * mult, nil
}

// FormatMemory renders a byte count in the largest whole unit, matching
// the form ParseMemory accepts.
func FormatMemory(bytes int64) string {
	switch {
	case bytes >= gib:
		return fmt.Sprintf("%dG", bytes/gib)
	case bytes >= mib:
		return fmt.Sprintf("%dM", bytes/mib)
	default:
		return fmt.Sprintf("%dK", bytes/kib)
	}
}
