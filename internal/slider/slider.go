// Package slider maps instants onto the fixed-resolution review axis and back.
//
// The axis covers the 36 hours from noon of a reference date to midnight
// two days later. A daylight saving transition inside that window shortens
// or lengthens the axis by the shift.
package slider

import (
	"fmt"
	"math"
	"time"
)

// AxisMinutes is the length of the review axis without a DST shift.
const AxisMinutes = 36 * 60

// DefaultSteps is the slider resolution used when none is configured.
const DefaultSteps = AxisMinutes

// DST describes a daylight saving transition inside a review window.
// Pivot is the last instant observed before the offset changed, Shift is
// the old offset minus the new offset in seconds.
type DST struct {
	Pivot time.Time `json:"pivot"`
	Shift int       `json:"shift"`
}

func (d *DST) pivot() *time.Time {
	if d == nil {
		return nil
	}
	return &d.Pivot
}

func (d *DST) shift() *int {
	if d == nil {
		return nil
	}
	return &d.Shift
}

// Mapper converts between slider points and instants at a fixed resolution.
type Mapper struct {
	Steps int
}

// New returns a Mapper for the given number of steps, falling back to
// DefaultSteps when steps is not positive.
func New(steps int) Mapper {
	if steps < 1 {
		steps = DefaultSteps
	}
	return Mapper{Steps: steps}
}

// TimeToPoint returns the whole minutes elapsed between noon of date, taken
// in t's zone, and t. A non-nil shift adds its floor in minutes. Results are
// not clamped to the axis.
func TimeToPoint(t, date time.Time, shift *int) int {
	y, m, d := date.Date()
	reference := time.Date(y, m, d, 12, 0, 0, 0, t.Location())

	minutes := int(math.Floor(t.Sub(reference).Seconds() / 60))
	if shift == nil {
		return minutes
	}
	return minutes + floorDiv(*shift, 60)
}

// PointToTime converts a slider point back to an instant expressed in the
// fixed zone baseOffset. When pivot is set and the result falls at or after
// it, the result is re-expressed in zone baseOffset - shift.
func (m Mapper) PointToTime(point int, date time.Time, baseOffset int, pivot *time.Time, shift *int) time.Time {
	s := 0
	if shift != nil {
		s = *shift
	}

	total := AxisMinutes + floorDiv(s, 60)
	minutes := float64(point) / float64(m.Steps) * float64(total)
	elapsed := time.Duration(math.Round(minutes*60e6)) * time.Microsecond

	y, mo, d := date.Date()
	result := time.Date(y, mo, d, 12, 0, 0, 0, Zone(baseOffset)).Add(elapsed)

	if pivot != nil && !result.Before(*pivot) {
		result = result.In(Zone(baseOffset - s))
	}
	return result
}

// Point is TimeToPoint with the shift of an optional transition.
func (m Mapper) Point(t, date time.Time, dst *DST) int {
	return TimeToPoint(t, date, dst.shift())
}

// Time is PointToTime with the pivot and shift of an optional transition.
func (m Mapper) Time(point int, date time.Time, baseOffset int, dst *DST) time.Time {
	return m.PointToTime(point, date, baseOffset, dst.pivot(), dst.shift())
}

// Fraction returns point as a fraction of the axis.
func (m Mapper) Fraction(point int) float64 {
	return float64(point) / float64(m.Steps)
}

// ApplyOffset returns the UTC instant viewed in a fixed zone of offsetSeconds.
func ApplyOffset(instant time.Time, offsetSeconds int) time.Time {
	return instant.In(Zone(offsetSeconds))
}

// Zone returns a fixed zone named UTC, UTC+HH:MM or UTC-HH:MM.
func Zone(offsetSeconds int) *time.Location {
	return time.FixedZone(ZoneName(offsetSeconds), offsetSeconds)
}

// ZoneName formats an offset the way the review tables display it.
// Seconds are appended only when the offset is not a whole minute.
func ZoneName(offsetSeconds int) string {
	if offsetSeconds == 0 {
		return "UTC"
	}

	sign := '+'
	abs := offsetSeconds
	if abs < 0 {
		sign = '-'
		abs = -abs
	}

	h, rem := abs/3600, abs%3600
	mm, ss := rem/60, rem%60
	if ss != 0 {
		return fmt.Sprintf("UTC%c%02d:%02d:%02d", sign, h, mm, ss)
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, h, mm)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
