// Package sleeptimes implements sleep windows: the reviewer-editable
// windows of a day and the read-only reference windows imported with it.
package sleeptimes

import (
	"time"

	"github.com/JaimeStill/actigraphy/internal/slider"
)

// Table selects which window table an operation reads or writes.
type Table string

const (
	// Manual holds the reviewer-editable windows.
	Manual Table = "sleep_times"
	// Reference holds the windows computed upstream at import time.
	Reference Table = "ggir_sleep_times"
)

// SleepTime is a sleep window stored as naive UTC instants plus the UTC
// offsets in effect at onset and wakeup.
type SleepTime struct {
	ID              int64     `json:"id"`
	DayID           int64     `json:"day_id"`
	Onset           time.Time `json:"onset"`
	OnsetUTCOffset  int       `json:"onset_utc_offset"`
	Wakeup          time.Time `json:"wakeup"`
	WakeupUTCOffset int       `json:"wakeup_utc_offset"`
	TimeCreated     time.Time `json:"time_created"`
	TimeUpdated     time.Time `json:"time_updated"`
}

// OnsetWithTZ returns the onset in its recorded zone.
func (s SleepTime) OnsetWithTZ() time.Time {
	return slider.ApplyOffset(s.Onset, s.OnsetUTCOffset)
}

// WakeupWithTZ returns the wakeup in its recorded zone.
func (s SleepTime) WakeupWithTZ() time.Time {
	return slider.ApplyOffset(s.Wakeup, s.WakeupUTCOffset)
}

// Duration is wakeup minus onset. Zero marks a window that was never set.
func (s SleepTime) Duration() time.Duration {
	return s.Wakeup.Sub(s.Onset)
}

// Command carries the values of a window to create or update.
type Command struct {
	Onset           time.Time
	OnsetUTCOffset  int
	Wakeup          time.Time
	WakeupUTCOffset int
}

// NewCommand builds a Command from zoned instants, taking each offset from
// the instant's own zone.
func NewCommand(onset, wakeup time.Time) Command {
	_, onsetOffset := onset.Zone()
	_, wakeupOffset := wakeup.Zone()
	return Command{
		Onset:           onset.UTC(),
		OnsetUTCOffset:  onsetOffset,
		Wakeup:          wakeup.UTC(),
		WakeupUTCOffset: wakeupOffset,
	}
}

// Row is a window bound to its day, used for bulk inserts.
type Row struct {
	DayID int64
	Command
}

// DaySleepTimes groups the editable windows of one day, in date order.
type DaySleepTimes struct {
	DayID          int64       `json:"day_id"`
	Date           time.Time   `json:"date"`
	IsMissingSleep bool        `json:"is_missing_sleep"`
	SleepTimes     []SleepTime `json:"sleep_times"`
}
