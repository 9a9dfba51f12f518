// Package export renders the review results of a subject into the CSV
// files consumed downstream and publishes them to blob storage.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
)

// TimeLayout renders instants in their recorded offset.
const TimeLayout = "2006-01-02T15:04:05-07:00"

// Placeholder stands in for the window of a day without windows.
var Placeholder = time.Unix(0, 0).UTC()

// WriteSleepLog writes one row holding, per day, the onset and wakeup of
// its longest window. The first window wins ties.
func WriteSleepLog(w io.Writer, identifier string, days []sleeptimes.DaySleepTimes) error {
	header := make([]string, 0, 1+2*len(days))
	row := make([]string, 0, 1+2*len(days))
	header = append(header, "ID")
	row = append(row, identifier)

	for i, day := range days {
		n := strconv.Itoa(i + 1)
		header = append(header, "onset_N"+n, "wakeup_N"+n)

		onset, wakeup := Placeholder, Placeholder
		if st, ok := Longest(day.SleepTimes); ok {
			onset, wakeup = st.OnsetWithTZ(), st.WakeupWithTZ()
		}
		row = append(row, onset.Format(TimeLayout), wakeup.Format(TimeLayout))
	}

	return writeRows(w, header, row)
}

// WriteAllSleepTimes writes every window of the subject ordered by onset.
func WriteAllSleepTimes(w io.Writer, days []sleeptimes.DaySleepTimes) error {
	all := make([]sleeptimes.SleepTime, 0)
	for _, day := range days {
		all = append(all, day.SleepTimes...)
	}
	slices.SortStableFunc(all, func(a, b sleeptimes.SleepTime) int {
		return a.Onset.Compare(b.Onset)
	})

	rows := make([][]string, 0, len(all)+1)
	rows = append(rows, []string{"onset", "wakeup"})
	for _, st := range all {
		rows = append(rows, []string{
			st.OnsetWithTZ().Format(TimeLayout),
			st.WakeupWithTZ().Format(TimeLayout),
		})
	}

	return writeRows(w, rows...)
}

// WriteDataCleaning writes the one-based numbers of the days to ignore:
// days without windows and days flagged as missing sleep.
func WriteDataCleaning(w io.Writer, identifier string, days []sleeptimes.DaySleepTimes) error {
	return writeRows(
		w,
		[]string{"ID", "day_part5", "relyonguider_part4", "night_part4"},
		[]string{identifier, "", "", joinInts(IgnoredNights(days))},
	)
}

// IgnoredNights returns the one-based numbers of the days to ignore.
func IgnoredNights(days []sleeptimes.DaySleepTimes) []int {
	out := make([]int, 0)
	for i, day := range days {
		if len(day.SleepTimes) == 0 || day.IsMissingSleep {
			out = append(out, i+1)
		}
	}
	return out
}

// Longest returns the window with the greatest duration, the first one on ties.
func Longest(windows []sleeptimes.SleepTime) (sleeptimes.SleepTime, bool) {
	if len(windows) == 0 {
		return sleeptimes.SleepTime{}, false
	}

	best := windows[0]
	for _, st := range windows[1:] {
		if st.Duration() > best.Duration() {
			best = st
		}
	}
	return best, true
}

func writeRows(w io.Writer, rows ...[]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
