package ingest

import (
	"fmt"
	"slices"
	"time"

	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/slider"
	"github.com/JaimeStill/actigraphy/internal/subjects"
)

// Build normalizes one recording into a subject creation command.
// Days without a matching night get a zero-length window at defaultSleep
// past local midnight.
func Build(identifier string, m *Metadata, nights []Night, defaultSleep time.Duration) (subjects.CreateCommand, error) {
	timestamps, err := m.Timestamps()
	if err != nil {
		return subjects.CreateCommand{}, err
	}

	starts := DayStarts(timestamps)
	days := make([]subjects.NewDay, 0, len(starts))
	for _, t := range starts {
		day, err := buildDay(t, nights, defaultSleep)
		if err != nil {
			return subjects.CreateCommand{}, err
		}
		days = append(days, day)
	}

	return subjects.CreateCommand{
		Name:          identifier,
		NPointsPerDay: m.PointsPerDay(),
		Days:          days,
		DataPoints:    m.DataPoints(timestamps),
	}, nil
}

// DayStarts returns one timestamp per local calendar date, the latest one
// recorded on that date, in ascending order.
func DayStarts(timestamps []time.Time) []time.Time {
	sorted := slices.Clone(timestamps)
	slices.SortStableFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	type civil struct {
		y int
		m time.Month
		d int
	}
	seen := make(map[civil]bool)
	out := make([]time.Time, 0)

	for i := len(sorted) - 1; i >= 0; i-- {
		y, m, d := sorted[i].Date()
		key := civil{y, m, d}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sorted[i])
	}

	slices.Reverse(out)
	return out
}

func buildDay(t time.Time, nights []Night, defaultSleep time.Duration) (subjects.NewDay, error) {
	y, m, d := t.Date()
	_, offset := t.Zone()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, slider.Zone(offset))

	day := subjects.NewDay{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}

	key := t.Format(CalendarDateLayout)
	idx := slices.IndexFunc(nights, func(n Night) bool { return n.CalendarDate == key })
	if idx < 0 {
		at := midnight.Add(defaultSleep)
		day.SleepTimes = []sleeptimes.Command{sleeptimes.NewCommand(at, at)}
		return day, nil
	}

	onsetOfDay, err := parseTimeOfDay(nights[idx].SleepOnset)
	if err != nil {
		return day, &ParseError{Field: fmt.Sprintf("nightsummary.%s[%d]", colSleepOnset, idx), Err: err}
	}
	wakeupOfDay, err := parseTimeOfDay(nights[idx].Wakeup)
	if err != nil {
		return day, &ParseError{Field: fmt.Sprintf("nightsummary.%s[%d]", colWakeup, idx), Err: err}
	}

	onset := midnight.Add(onsetOfDay)
	wakeup := midnight.Add(wakeupOfDay)
	if onsetOfDay < 12*time.Hour {
		onset = onset.AddDate(0, 0, 1)
	}
	if onset.After(wakeup) {
		wakeup = wakeup.AddDate(0, 0, 1)
	}

	window := sleeptimes.NewCommand(onset, wakeup)
	day.SleepTimes = []sleeptimes.Command{window}
	day.References = []sleeptimes.Command{window}
	return day, nil
}
