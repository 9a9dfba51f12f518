package ingest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/actigraphy/internal/ingest"
	"github.com/JaimeStill/actigraphy/internal/subjects"
	"github.com/JaimeStill/actigraphy/pkg/pagination"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSubjects records created subjects in memory.
type fakeSubjects struct {
	mu      sync.Mutex
	created map[string]subjects.CreateCommand
	present map[string]bool
	err     error
}

func newFakeSubjects(existing ...string) *fakeSubjects {
	f := &fakeSubjects{created: map[string]subjects.CreateCommand{}, present: map[string]bool{}}
	for _, name := range existing {
		f.present[name] = true
	}
	return f
}

func (f *fakeSubjects) Handler() *subjects.Handler {
	return subjects.NewHandler(f, discard(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 10})
}

func (f *fakeSubjects) List(context.Context, pagination.PageRequest, subjects.Filters) (*pagination.PageResult[subjects.Subject], error) {
	return nil, nil
}

func (f *fakeSubjects) Find(context.Context, string) (*subjects.Subject, error) { return nil, nil }

func (f *fakeSubjects) Exists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.present[name], nil
}

func (f *fakeSubjects) Create(_ context.Context, cmd subjects.CreateCommand) (*subjects.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.present[cmd.Name] {
		return nil, subjects.ErrDuplicate
	}
	f.present[cmd.Name] = true
	f.created[cmd.Name] = cmd
	return &subjects.Subject{ID: int64(len(f.created)), Name: cmd.Name, NPointsPerDay: cmd.NPointsPerDay}, nil
}

func (f *fakeSubjects) SetFinished(context.Context, string, bool) (*subjects.Subject, error) {
	return nil, nil
}

func (f *fakeSubjects) Delete(context.Context, string) error { return nil }

func sampleMetadata() *ingest.Metadata {
	return &ingest.Metadata{
		WindowSizes: []int{5, 10},
		MetaShort: ingest.MetaShort{
			Timestamp: []string{
				"2024-01-01T23:59:50+0100",
				"2024-01-01T23:59:55+0100",
				"2024-01-02T00:00:00+0100",
			},
			AngleZ: []float64{10, 20, 30},
			ENMO:   []float64{0.1, 0.2, 0.3},
		},
		MetaLong: ingest.MetaLong{NonWearScore: []float64{0, 2}},
	}
}

func metadataJSON(t *testing.T, m *ingest.Metadata) []byte {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	return data
}

const nightCSV = "ID,night,calendar_date,sleeponset_ts,wakeup_ts,guider\n" +
	"abc,1,1/1/2024,22:30:00,07:15:00,sleeplog\n"

func TestBuild(t *testing.T) {
	nights := []ingest.Night{{CalendarDate: "1/1/2024", SleepOnset: "22:30:00", Wakeup: "07:15:00"}}

	cmd, err := ingest.Build("abc", sampleMetadata(), nights, 12*time.Hour)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if cmd.Name != "abc" || cmd.NPointsPerDay != 17280 {
		t.Errorf("subject = (%s, %d), want (abc, 17280)", cmd.Name, cmd.NPointsPerDay)
	}
	if len(cmd.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(cmd.Days))
	}

	first := cmd.Days[0]
	if !first.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first date = %v, want 2024-01-01", first.Date)
	}
	if len(first.SleepTimes) != 1 || len(first.References) != 1 {
		t.Fatalf("first day windows = %d/%d, want 1/1", len(first.SleepTimes), len(first.References))
	}
	w := first.SleepTimes[0]
	if want := time.Date(2024, 1, 1, 21, 30, 0, 0, time.UTC); !w.Onset.Equal(want) {
		t.Errorf("onset = %v, want %v", w.Onset, want)
	}
	if want := time.Date(2024, 1, 2, 6, 15, 0, 0, time.UTC); !w.Wakeup.Equal(want) {
		t.Errorf("wakeup = %v, want %v", w.Wakeup, want)
	}
	if w.OnsetUTCOffset != 3600 || w.WakeupUTCOffset != 3600 {
		t.Errorf("offsets = (%d, %d), want (3600, 3600)", w.OnsetUTCOffset, w.WakeupUTCOffset)
	}

	second := cmd.Days[1]
	if len(second.References) != 0 || len(second.SleepTimes) != 1 {
		t.Fatalf("second day windows = %d/%d, want 1/0", len(second.SleepTimes), len(second.References))
	}
	d := second.SleepTimes[0]
	if want := time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC); !d.Onset.Equal(want) || !d.Wakeup.Equal(want) {
		t.Errorf("default window = (%v, %v), want %v twice", d.Onset, d.Wakeup, want)
	}

	wantNonWear := []bool{false, false, true}
	for i, p := range cmd.DataPoints {
		if p.NonWear != wantNonWear[i] {
			t.Errorf("point %d non-wear = %v, want %v", i, p.NonWear, wantNonWear[i])
		}
		if p.TimestampUTCOffset != 3600 || p.Timestamp.Location() != time.UTC {
			t.Errorf("point %d timestamp = %v offset %d, want UTC with 3600", i, p.Timestamp, p.TimestampUTCOffset)
		}
	}
}

func TestBuildOnsetBeforeNoonRollsOver(t *testing.T) {
	nights := []ingest.Night{{CalendarDate: "1/1/2024", SleepOnset: "01:30", Wakeup: "09:00"}}

	cmd, err := ingest.Build("abc", sampleMetadata(), nights, 12*time.Hour)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	w := cmd.Days[0].SleepTimes[0]
	if want := time.Date(2024, 1, 2, 0, 30, 0, 0, time.UTC); !w.Onset.Equal(want) {
		t.Errorf("onset = %v, want %v", w.Onset, want)
	}
	if want := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC); !w.Wakeup.Equal(want) {
		t.Errorf("wakeup = %v, want %v", w.Wakeup, want)
	}
}

func TestBuildParseErrors(t *testing.T) {
	bad := sampleMetadata()
	bad.MetaShort.Timestamp[1] = "yesterday"

	tests := []struct {
		name   string
		meta   *ingest.Metadata
		nights []ingest.Night
		field  string
	}{
		{"timestamp", bad, nil, "metashort.timestamp[1]"},
		{
			"onset",
			sampleMetadata(),
			[]ingest.Night{{CalendarDate: "1/1/2024", SleepOnset: "late", Wakeup: "07:00"}},
			"nightsummary.sleeponset_ts[0]",
		},
		{
			"wakeup",
			sampleMetadata(),
			[]ingest.Night{{CalendarDate: "1/1/2024", SleepOnset: "23:00", Wakeup: "25:00"}},
			"nightsummary.wakeup_ts[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ingest.Build("abc", tt.meta, tt.nights, 12*time.Hour)
			var perr *ingest.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want ParseError", err)
			}
			if perr.Field != tt.field {
				t.Errorf("field = %s, want %s", perr.Field, tt.field)
			}
		})
	}
}

func TestDayStarts(t *testing.T) {
	parse := func(s string) time.Time {
		ts, err := time.Parse(ingest.TimestampLayout, s)
		if err != nil {
			t.Fatal(err)
		}
		return ts
	}

	got := ingest.DayStarts([]time.Time{
		parse("2024-01-02T08:00:00+0000"),
		parse("2024-01-01T12:00:00+0000"),
		parse("2024-01-01T23:00:00+0000"),
		parse("2024-01-02T07:00:00+0000"),
	})

	want := []string{"2024-01-01T23:00:00+0000", "2024-01-02T08:00:00+0000"}
	if len(got) != len(want) {
		t.Fatalf("DayStarts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Format(ingest.TimestampLayout) != want[i] {
			t.Errorf("DayStarts()[%d] = %s, want %s", i, got[i].Format(ingest.TimestampLayout), want[i])
		}
	}
}

func TestDecodeMetadataValidation(t *testing.T) {
	short := sampleMetadata()
	short.MetaShort.AngleZ = short.MetaShort.AngleZ[:2]

	empty := sampleMetadata()
	empty.MetaShort = ingest.MetaShort{}

	windows := sampleMetadata()
	windows.WindowSizes = []int{5}

	tests := []struct {
		name  string
		meta  *ingest.Metadata
		field string
	}{
		{"short anglez", short, "metashort.anglez"},
		{"no samples", empty, "metashort.timestamp"},
		{"window sizes", windows, "windowsizes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ingest.DecodeMetadata(bytes.NewReader(metadataJSON(t, tt.meta)))
			var perr *ingest.ParseError
			if !errors.As(err, &perr) || perr.Field != tt.field {
				t.Errorf("DecodeMetadata() error = %v, want ParseError on %s", err, tt.field)
			}
		})
	}

	if _, err := ingest.DecodeMetadata(strings.NewReader("{")); err == nil {
		t.Error("DecodeMetadata(truncated) error = nil, want error")
	}
}

func TestReadCSVNights(t *testing.T) {
	nights, err := ingest.ReadCSVNights(strings.NewReader(nightCSV))
	if err != nil {
		t.Fatalf("ReadCSVNights() error = %v", err)
	}

	want := ingest.Night{CalendarDate: "1/1/2024", SleepOnset: "22:30:00", Wakeup: "07:15:00"}
	if len(nights) != 1 || nights[0] != want {
		t.Errorf("ReadCSVNights() = %+v, want [%+v]", nights, want)
	}

	_, err = ingest.ReadCSVNights(strings.NewReader("calendar_date,wakeup_ts\n1/1/2024,07:00\n"))
	if !errors.Is(err, ingest.ErrMissingColumn) {
		t.Errorf("missing column error = %v, want ErrMissingColumn", err)
	}
}

func TestReadXLSXNights(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"calendar_date", "sleeponset_ts", "wakeup_ts"},
		{"1/1/2024", "22:30:00", "07:15:00"},
		{"2/1/2024", "23:00:00", "06:45:00"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	nights, err := ingest.ReadXLSXNights(buf, "")
	if err != nil {
		t.Fatalf("ReadXLSXNights() error = %v", err)
	}
	if len(nights) != 2 || nights[1].Wakeup != "06:45:00" {
		t.Errorf("ReadXLSXNights() = %+v, want 2 nights ending 06:45:00", nights)
	}
}

func writeSubjectDir(t *testing.T, root, name string, withNights bool) string {
	t.Helper()
	dir := filepath.Join(root, name)
	id := name[strings.LastIndex(name, "_")+1:]

	basic := filepath.Join(dir, "meta", "basic")
	ms4 := filepath.Join(dir, "meta", "ms4.out")
	for _, p := range []string{basic, ms4} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	if err := os.WriteFile(filepath.Join(basic, "meta_"+id+".json"), metadataJSON(t, sampleMetadata()), 0o644); err != nil {
		t.Fatal(err)
	}
	if withNights {
		if err := os.WriteFile(filepath.Join(ms4, id+".csv"), []byte(nightCSV), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestResolveLayout(t *testing.T) {
	root := t.TempDir()
	dir := writeSubjectDir(t, root, "output_abc", true)

	l, err := ingest.ResolveLayout(dir)
	if err != nil {
		t.Fatalf("ResolveLayout() error = %v", err)
	}
	if l.Identifier != "abc" {
		t.Errorf("identifier = %s, want abc", l.Identifier)
	}
	if filepath.Base(l.MetadataPath) != "meta_abc.json" || filepath.Base(l.NightSummaryPath) != "abc.csv" {
		t.Errorf("paths = (%s, %s)", l.MetadataPath, l.NightSummaryPath)
	}

	missing := writeSubjectDir(t, root, "output_def", false)
	_, err = ingest.ResolveLayout(missing)
	if !errors.Is(err, fs.ErrNotExist) || !errors.Is(err, ingest.ErrNoNightSummary) {
		t.Errorf("missing night summary error = %v, want ErrNoNightSummary and fs.ErrNotExist", err)
	}
}

func TestPipelineInitialize(t *testing.T) {
	root := t.TempDir()
	l, err := ingest.ResolveLayout(writeSubjectDir(t, root, "output_abc", true))
	if err != nil {
		t.Fatal(err)
	}

	fake := newFakeSubjects()
	p := ingest.NewPipeline(fake, 12*time.Hour, discard())

	meta, nights := l.Sources()
	s, err := p.Initialize(context.Background(), l.Identifier, meta, nights)
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if s.Name != "abc" || len(fake.created["abc"].DataPoints) != 3 {
		t.Errorf("created = %+v", fake.created["abc"])
	}

	_, err = p.Initialize(context.Background(), "missing", ingest.JSONMetadata{Path: filepath.Join(root, "nope.json")}, nights)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing metadata error = %v, want fs.ErrNotExist", err)
	}
}

func TestRunnerRun(t *testing.T) {
	root := t.TempDir()
	writeSubjectDir(t, root, "output_aaa", true)
	writeSubjectDir(t, root, "output_bbb", false)
	writeSubjectDir(t, root, "output_ccc", true)
	stray := filepath.Join(root, "output_notes.txt")
	if err := os.WriteFile(stray, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := newFakeSubjects("ccc")
	runner := ingest.NewRunner(ingest.NewPipeline(fake, 12*time.Hour, discard()), 2, discard())

	report, err := runner.Run(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Created) != 1 || report.Created[0] != "aaa" {
		t.Errorf("created = %v, want [aaa]", report.Created)
	}
	if len(report.Skipped) != 2 {
		t.Errorf("skipped = %v, want ccc and the stray file", report.Skipped)
	}
	if len(report.Failed) != 1 || filepath.Base(report.Failed[0].Dir) != "output_bbb" {
		t.Errorf("failed = %+v, want output_bbb", report.Failed)
	}
}

func TestRunnerSingleIdentifier(t *testing.T) {
	root := t.TempDir()
	writeSubjectDir(t, root, "output_aaa", true)
	writeSubjectDir(t, root, "output_bbb", true)

	fake := newFakeSubjects()
	runner := ingest.NewRunner(ingest.NewPipeline(fake, 12*time.Hour, discard()), 4, discard())

	report, err := runner.Run(context.Background(), root, "output_bbb")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Created) != 1 || report.Created[0] != "bbb" {
		t.Errorf("created = %v, want [bbb]", report.Created)
	}
}

func TestRunnerEmptyDataDir(t *testing.T) {
	runner := ingest.NewRunner(ingest.NewPipeline(newFakeSubjects(), 12*time.Hour, discard()), 1, discard())

	report, err := runner.Run(context.Background(), t.TempDir(), "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Created)+len(report.Skipped)+len(report.Failed) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}
