package export_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/actigraphy/internal/export"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/subjects"
	"github.com/JaimeStill/actigraphy/pkg/pagination"
	"github.com/JaimeStill/actigraphy/pkg/routes"
	"github.com/JaimeStill/actigraphy/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var plusOne = time.FixedZone("", 3600)

func window(id int64, onset, wakeup time.Time) sleeptimes.SleepTime {
	_, onOff := onset.Zone()
	_, wakeOff := wakeup.Zone()
	return sleeptimes.SleepTime{
		ID:              id,
		Onset:           onset.UTC(),
		OnsetUTCOffset:  onOff,
		Wakeup:          wakeup.UTC(),
		WakeupUTCOffset: wakeOff,
	}
}

func at(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, plusOne)
}

func sampleDays() []sleeptimes.DaySleepTimes {
	return []sleeptimes.DaySleepTimes{
		{DayID: 1, SleepTimes: []sleeptimes.SleepTime{
			window(1, at(1, 13), at(1, 14)),
			window(2, at(1, 22), at(2, 6)),
		}},
		{DayID: 2, SleepTimes: []sleeptimes.SleepTime{}},
		{DayID: 3, IsMissingSleep: true, SleepTimes: []sleeptimes.SleepTime{
			window(3, at(3, 23), at(4, 7)),
		}},
	}
}

func TestWriteSleepLog(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteSleepLog(&buf, "abc", sampleDays()); err != nil {
		t.Fatalf("WriteSleepLog() error = %v", err)
	}

	want := "ID,onset_N1,wakeup_N1,onset_N2,wakeup_N2,onset_N3,wakeup_N3\n" +
		"abc,2024-01-01T22:00:00+01:00,2024-01-02T06:00:00+01:00," +
		"1970-01-01T00:00:00+00:00,1970-01-01T00:00:00+00:00," +
		"2024-01-03T23:00:00+01:00,2024-01-04T07:00:00+01:00\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteSleepLog() =\n%s\nwant\n%s", got, want)
	}
}

func TestLongestPrefersFirstOnTies(t *testing.T) {
	windows := []sleeptimes.SleepTime{
		window(1, at(1, 20), at(1, 22)),
		window(2, at(1, 23), at(2, 1)),
	}

	got, ok := export.Longest(windows)
	if !ok || got.ID != 1 {
		t.Errorf("Longest() = (%d, %v), want (1, true)", got.ID, ok)
	}

	if _, ok := export.Longest(nil); ok {
		t.Error("Longest(nil) ok = true, want false")
	}
}

func TestWriteAllSleepTimes(t *testing.T) {
	days := []sleeptimes.DaySleepTimes{
		{SleepTimes: []sleeptimes.SleepTime{window(5, at(2, 22), at(3, 6))}},
		{SleepTimes: []sleeptimes.SleepTime{window(6, at(1, 22), at(2, 6))}},
	}

	var buf bytes.Buffer
	if err := export.WriteAllSleepTimes(&buf, days); err != nil {
		t.Fatalf("WriteAllSleepTimes() error = %v", err)
	}

	want := "onset,wakeup\n" +
		"2024-01-01T22:00:00+01:00,2024-01-02T06:00:00+01:00\n" +
		"2024-01-02T22:00:00+01:00,2024-01-03T06:00:00+01:00\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteAllSleepTimes() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteDataCleaning(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteDataCleaning(&buf, "abc", sampleDays()); err != nil {
		t.Fatalf("WriteDataCleaning() error = %v", err)
	}

	want := "ID,day_part5,relyonguider_part4,night_part4\nabc,,,2 3\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteDataCleaning() = %q, want %q", got, want)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		in   string
		key  string
		fail bool
	}{
		{"sleeplog", "abc/logs/sleeplog_abc.csv", false},
		{"data_cleaning", "abc/logs/data_cleaning_abc.csv", false},
		{"multiple_sleep", "abc/logs/multiple_sleep_abc.csv", false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		k, err := export.ParseKind(tt.in)
		if tt.fail {
			if !errors.Is(err, export.ErrUnknownKind) {
				t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", tt.in, err)
		}
		if got := k.Key("abc"); got != tt.key {
			t.Errorf("Key(abc) = %s, want %s", got, tt.key)
		}
	}
}

type fakeSubjects struct{}

func (fakeSubjects) Handler() *subjects.Handler {
	return subjects.NewHandler(fakeSubjects{}, discard(), pagination.Config{})
}

func (fakeSubjects) List(context.Context, pagination.PageRequest, subjects.Filters) (*pagination.PageResult[subjects.Subject], error) {
	return nil, nil
}

func (fakeSubjects) Find(_ context.Context, name string) (*subjects.Subject, error) {
	if name != "abc" {
		return nil, subjects.ErrNotFound
	}
	return &subjects.Subject{ID: 9, Name: name}, nil
}

func (fakeSubjects) Exists(context.Context, string) (bool, error) { return true, nil }

func (fakeSubjects) Create(context.Context, subjects.CreateCommand) (*subjects.Subject, error) {
	return nil, nil
}

func (fakeSubjects) SetFinished(context.Context, string, bool) (*subjects.Subject, error) {
	return nil, nil
}

func (fakeSubjects) Delete(context.Context, string) error { return nil }

type fakeSleepTimes struct {
	days []sleeptimes.DaySleepTimes
}

func (f fakeSleepTimes) ListByDay(context.Context, int64) ([]sleeptimes.SleepTime, error) {
	return nil, nil
}

func (f fakeSleepTimes) ListReferenceByDay(context.Context, int64) ([]sleeptimes.SleepTime, error) {
	return nil, nil
}

func (f fakeSleepTimes) ListBySubject(_ context.Context, subjectID int64) ([]sleeptimes.DaySleepTimes, error) {
	if subjectID != 9 {
		return nil, errors.New("wrong subject")
	}
	return f.days, nil
}

func (f fakeSleepTimes) Create(context.Context, int64, sleeptimes.Command) (*sleeptimes.SleepTime, error) {
	return nil, nil
}

func (f fakeSleepTimes) Update(context.Context, int64, sleeptimes.Command) (*sleeptimes.SleepTime, error) {
	return nil, nil
}

func (f fakeSleepTimes) DeleteLast(context.Context, int64) (*sleeptimes.SleepTime, error) {
	return nil, nil
}

func newPublisher(t *testing.T) (*export.Publisher, storage.System) {
	t.Helper()
	store, err := storage.New(&storage.Config{Backend: storage.BackendLocal, Root: t.TempDir()}, discard())
	if err != nil {
		t.Fatal(err)
	}
	return export.NewPublisher(store, fakeSubjects{}, fakeSleepTimes{days: sampleDays()}, discard()), store
}

func TestPublisherPublishAndRemove(t *testing.T) {
	pub, store := newPublisher(t)
	ctx := context.Background()

	if err := pub.Publish(ctx, "abc", export.Kinds...); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	blob, err := store.Download(ctx, export.DataCleaning.Key("abc"))
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, _ := io.ReadAll(blob.Body)
	blob.Body.Close()
	if want := "ID,day_part5,relyonguider_part4,night_part4\nabc,,,2 3\n"; string(data) != want {
		t.Errorf("published data cleaning = %q, want %q", data, want)
	}

	if err := pub.Remove(ctx, "abc"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	for _, k := range export.Kinds {
		if ok, _ := store.Exists(ctx, k.Key("abc")); ok {
			t.Errorf("%s still exists after Remove", k)
		}
	}
	if err := pub.Remove(ctx, "abc"); err != nil {
		t.Errorf("second Remove() error = %v, want nil", err)
	}

	if err := pub.Publish(ctx, "ghost", export.SleepLog); !errors.Is(err, subjects.ErrNotFound) {
		t.Errorf("Publish(ghost) error = %v, want subjects.ErrNotFound", err)
	}
}

func TestHandlerDownload(t *testing.T) {
	pub, _ := newPublisher(t)
	mux := http.NewServeMux()
	routes.Register(mux, export.NewHandler(pub, discard()).Routes())

	tests := []struct {
		path string
		want int
	}{
		{"/subjects/abc/exports/sleeplog", http.StatusOK},
		{"/subjects/abc/exports/unknown", http.StatusBadRequest},
		{"/subjects/ghost/exports/sleeplog", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
		}
		if tt.want == http.StatusOK {
			if ct := rec.Header().Get("Content-Type"); ct != export.ContentType {
				t.Errorf("content type = %s, want %s", ct, export.ContentType)
			}
			if !bytes.HasPrefix(rec.Body.Bytes(), []byte("ID,onset_N1")) {
				t.Errorf("body = %q, want sleep log", rec.Body.String())
			}
		}
	}
}
