package formatting

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"
)

// FormatDuration renders d as H:MM:SS. Hours are not wrapped at 24 and
// sub-second precision is truncated; negative durations carry a leading minus.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
}

// TimeFormatter renders times with a strftime pattern such as "%A - %d %B %Y %H:%M %Z".
type TimeFormatter struct {
	pattern string
	f       *strftime.Strftime
}

// NewTimeFormatter compiles a strftime pattern.
func NewTimeFormatter(pattern string) (*TimeFormatter, error) {
	f, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile time format %q: %w", pattern, err)
	}
	return &TimeFormatter{pattern: pattern, f: f}, nil
}

// Format renders t in its own location.
func (f *TimeFormatter) Format(t time.Time) string {
	return f.f.FormatString(t)
}

// Pattern returns the source strftime pattern.
func (f *TimeFormatter) Pattern() string {
	return f.pattern
}
