package vm

import "testing"

func TestParseMemory(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{"gigabytes", "2G", 2 * gib, false},
		{"megabytes", "512M", 512 * mib, false},
		{"kilobytes", "1024K", 1024 * kib, false},
		{"bare bytes", "1024", 1024, false},
		{"lowercase", "2g", 2 * gib, false},
		{"surrounding space", " 4G ", 4 * gib, false},
		{"unknown suffix", "2T", 0, true},
		{"not a number", "abc", 0, true},
		{"empty", "", 0, true},
		{"suffix only", "G", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMemory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMemory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMemory(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatMemory(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"whole gigabytes", 2 * gib, "2G"},
		{"rounds down to gigabytes", 2*gib + 5*mib, "2G"},
		{"megabytes", 512 * mib, "512M"},
		{"kilobytes", 4 * kib, "4K"},
		{"sub-kilobyte", 100, "0K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMemory(tt.bytes); got != tt.want {
				t.Errorf("FormatMemory(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	// Formatting a whole-unit byte count and parsing the result must
	// yield the value back exactly.
	for _, bytes := range []int64{gib, 2 * gib, 512 * mib, 64 * kib} {
		formatted := FormatMemory(bytes)
		parsed, err := ParseMemory(formatted)
		if err != nil {
			t.Fatalf("ParseMemory(%q) failed: %v", formatted, err)
		}
		if parsed != bytes {
			t.Errorf("round trip %d -> %q -> %d", bytes, formatted, parsed)
		}
	}
}
