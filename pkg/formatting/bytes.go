// Package formatting renders and parses human-readable byte sizes,
// durations, and sleep timestamps.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a count of bytes rendered in base-1024 units.
type ByteSize int64

const (
	B ByteSize = 1 << (10 * iota)
	KB
	MB
	GB
	TB
	PB
	EB
)

var sizes = []struct {
	unit string
	size ByteSize
}{
	{"EB", EB},
	{"PB", PB},
	{"TB", TB},
	{"GB", GB},
	{"MB", MB},
	{"KB", KB},
	{"B", B},
}

// String renders the size in the largest whole unit with one decimal
// place, dropping a trailing ".0".
func (b ByteSize) String() string {
	return b.Format(1)
}

// Format renders the size in the largest unit not exceeding it, with at
// most precision decimal places. Negative precision is treated as zero.
func (b ByteSize) Format(precision int) string {
	precision = max(precision, 0)
	if b <= 0 {
		return strconv.FormatInt(int64(b), 10) + " B"
	}

	for _, s := range sizes {
		if b < s.size {
			continue
		}
		v := strconv.FormatFloat(float64(b)/float64(s.size), 'f', precision, 64)
		if strings.Contains(v, ".") {
			v = strings.TrimRight(strings.TrimRight(v, "0"), ".")
		}
		return v + " " + s.unit
	}
	return strconv.FormatInt(int64(b), 10) + " B"
}

// ParseBytes parses a size such as "256MB", "1.5 gb" or "1024". Units run
// from B through EB, are case-insensitive, and a bare number is bytes.
func ParseBytes(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.ToUpper(strings.TrimSpace(s[split:]))
	}
	if num == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	if unit == "" {
		return ByteSize(value), nil
	}
	for _, sz := range sizes {
		if sz.unit == unit {
			return ByteSize(value * float64(sz.size)), nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}
