package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/actigraphy/pkg/storage"
)

// CalendarDateLayout is the calendar_date layout of night summaries.
const CalendarDateLayout = "2/1/2006"

const (
	colCalendarDate = "calendar_date"
	colSleepOnset   = "sleeponset_ts"
	colWakeup       = "wakeup_ts"
)

// Night is one row of a night summary. Onset and wakeup are times of day.
type Night struct {
	CalendarDate string
	SleepOnset   string
	Wakeup       string
}

// NightSummarySource yields the automatically detected nights of one recording.
type NightSummarySource interface {
	Nights(ctx context.Context) ([]Night, error)
}

// CSVNightSummary reads a night summary from a CSV file.
type CSVNightSummary struct {
	Path string
}

func (s CSVNightSummary) Nights(ctx context.Context) ([]Night, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open night summary: %w", err)
	}
	defer f.Close()
	return ReadCSVNights(f)
}

// XLSXNightSummary reads a night summary from a spreadsheet. An empty Sheet
// selects the first sheet.
type XLSXNightSummary struct {
	Path  string
	Sheet string
}

func (s XLSXNightSummary) Nights(ctx context.Context) ([]Night, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open night summary: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, s.Sheet)
}

// StoredNightSummary reads a night summary from blob storage. The format
// follows the key extension.
type StoredNightSummary struct {
	Storage storage.System
	Key     string
	Sheet   string
}

func (s StoredNightSummary) Nights(ctx context.Context) ([]Night, error) {
	blob, err := s.Storage.Download(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("download night summary: %w", err)
	}
	defer blob.Body.Close()

	if isSpreadsheet(s.Key) {
		return ReadXLSXNights(blob.Body, s.Sheet)
	}
	return ReadCSVNights(blob.Body)
}

// ReadCSVNights parses a CSV night summary.
func ReadCSVNights(r io.Reader) ([]Night, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{Field: "nightsummary", Err: err}
	}
	return parseNightTable(rows)
}

// ReadXLSXNights parses a spreadsheet night summary.
func ReadXLSXNights(r io.Reader, sheet string) ([]Night, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read night summary: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Field: "nightsummary", Err: err}
	}
	defer f.Close()
	return readWorkbook(f, sheet)
}

func readWorkbook(f *excelize.File, sheet string) ([]Night, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, &ParseError{Field: "nightsummary", Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Field: "nightsummary." + sheet, Err: err}
	}
	return parseNightTable(rows)
}

func parseNightTable(rows [][]string) ([]Night, error) {
	if len(rows) == 0 {
		return nil, &ParseError{Field: "nightsummary", Err: fmt.Errorf("no header row")}
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, ok := index[h]; !ok {
			index[h] = i
		}
	}

	cols := make([]int, 3)
	for i, name := range []string{colCalendarDate, colSleepOnset, colWakeup} {
		c, ok := index[name]
		if !ok {
			return nil, &ParseError{Field: "nightsummary." + name, Err: ErrMissingColumn}
		}
		cols[i] = c
	}

	nights := make([]Night, 0, len(rows)-1)
	for _, row := range rows[1:] {
		nights = append(nights, Night{
			CalendarDate: cell(row, cols[0]),
			SleepOnset:   cell(row, cols[1]),
			Wakeup:       cell(row, cols[2]),
		})
	}
	return nights, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// parseTimeOfDay parses HH:MM:SS or HH:MM into an offset from midnight.
func parseTimeOfDay(s string) (time.Duration, error) {
	layout := "15:04:05"
	if strings.Count(s, ":") == 1 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

func isSpreadsheet(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}
