package formatting_test

import (
	"testing"

	"github.com/JaimeStill/actigraphy/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    formatting.ByteSize
		wantErr bool
	}{
		{"bare bytes", "1024", 1024, false},
		{"bytes unit", "512B", 512, false},
		{"kilobytes", "1KB", formatting.KB, false},
		{"megabytes", "256MB", 256 * formatting.MB, false},
		{"fractional", "1.5GB", 3 * formatting.GB / 2, false},
		{"lowercase with space", "10 mb", 10 * formatting.MB, false},
		{"surrounding whitespace", "  50MB  ", 50 * formatting.MB, false},
		{"zero", "0", 0, false},
		{"empty", "", 0, true},
		{"unknown unit", "50XX", 0, true},
		{"no number", "MB", 0, true},
		{"negative", "-5MB", 0, true},
		{"two dots", "1.2.3MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestByteSizeString(t *testing.T) {
	tests := []struct {
		size formatting.ByteSize
		want string
	}{
		{0, "0 B"},
		{64, "64 B"},
		{formatting.KB, "1 KB"},
		{1536 * formatting.KB, "1.5 MB"},
		{256 * formatting.MB, "256 MB"},
		{formatting.GB + formatting.GB/10, "1.1 GB"},
		{formatting.EB, "1 EB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.size.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestByteSizeFormatPrecision(t *testing.T) {
	size := 1100 * formatting.KB
	if got := size.Format(3); got != "1.074 MB" {
		t.Errorf("Format(3) = %q", got)
	}
	if got := size.Format(-1); got != "1 MB" {
		t.Errorf("Format(-1) = %q", got)
	}
}

func TestByteSizeRoundTrip(t *testing.T) {
	for _, size := range []formatting.ByteSize{formatting.KB, 50 * formatting.MB, formatting.TB} {
		parsed, err := formatting.ParseBytes(size.String())
		if err != nil {
			t.Fatalf("ParseBytes(%q) error = %v", size.String(), err)
		}
		if parsed != size {
			t.Errorf("round trip %d: got %d", size, parsed)
		}
	}
}
