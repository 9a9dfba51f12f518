package review_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/days"
	"github.com/JaimeStill/actigraphy/internal/export"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/subjects"
	"github.com/JaimeStill/actigraphy/pkg/pagination"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSubjects struct {
	deleted   []string
	deleteErr error
	finished  map[string]bool
}

func (f *fakeSubjects) Handler() *subjects.Handler {
	return subjects.NewHandler(f, discard(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 10})
}

func (f *fakeSubjects) List(context.Context, pagination.PageRequest, subjects.Filters) (*pagination.PageResult[subjects.Subject], error) {
	return nil, nil
}

func (f *fakeSubjects) Find(context.Context, string) (*subjects.Subject, error) { return nil, nil }

func (f *fakeSubjects) Exists(context.Context, string) (bool, error) { return true, nil }

func (f *fakeSubjects) Create(context.Context, subjects.CreateCommand) (*subjects.Subject, error) {
	return nil, nil
}

func (f *fakeSubjects) SetFinished(_ context.Context, name string, finished bool) (*subjects.Subject, error) {
	if f.finished == nil {
		f.finished = map[string]bool{}
	}
	f.finished[name] = finished
	return &subjects.Subject{Name: name, IsFinished: finished}, nil
}

func (f *fakeSubjects) Delete(_ context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

type fakeDays struct {
	list  []days.Day
	flags []days.FlagsCommand
	count int
}

func (f *fakeDays) Handler() *days.Handler { return days.NewHandler(f, discard()) }

func (f *fakeDays) Find(_ context.Context, _ string, index int) (*days.Day, error) {
	if index < 0 || index >= len(f.list) {
		return nil, days.ErrNotFound
	}
	d := f.list[index]
	return &d, nil
}

func (f *fakeDays) List(context.Context, string) ([]days.Day, error) { return f.list, nil }

func (f *fakeDays) Count(context.Context, string) (int, error) {
	f.count++
	return len(f.list), nil
}

func (f *fakeDays) SetFlags(_ context.Context, _ string, index int, cmd days.FlagsCommand) (*days.Day, error) {
	if index < 0 || index >= len(f.list) {
		return nil, days.ErrNotFound
	}
	f.flags = append(f.flags, cmd)
	d := f.list[index]
	if cmd.IsMissingSleep != nil {
		d.IsMissingSleep = *cmd.IsMissingSleep
	}
	return &d, nil
}

type fakeSleepTimes struct {
	windows    []sleeptimes.SleepTime
	references []sleeptimes.SleepTime
	updates    []sleeptimes.Command
	created    []sleeptimes.Command
	nextID     int64
}

func (f *fakeSleepTimes) ListByDay(context.Context, int64) ([]sleeptimes.SleepTime, error) {
	return slices.Clone(f.windows), nil
}

func (f *fakeSleepTimes) ListReferenceByDay(context.Context, int64) ([]sleeptimes.SleepTime, error) {
	return slices.Clone(f.references), nil
}

func (f *fakeSleepTimes) ListBySubject(context.Context, int64) ([]sleeptimes.DaySleepTimes, error) {
	return nil, nil
}

func (f *fakeSleepTimes) Create(_ context.Context, dayID int64, cmd sleeptimes.Command) (*sleeptimes.SleepTime, error) {
	f.created = append(f.created, cmd)
	f.nextID++
	st := window(f.nextID, dayID, cmd)
	f.windows = append(f.windows, st)
	return &st, nil
}

func (f *fakeSleepTimes) Update(_ context.Context, id int64, cmd sleeptimes.Command) (*sleeptimes.SleepTime, error) {
	for i, st := range f.windows {
		if st.ID == id {
			f.updates = append(f.updates, cmd)
			f.windows[i] = window(id, st.DayID, cmd)
			return &f.windows[i], nil
		}
	}
	return nil, sleeptimes.ErrNotFound
}

func (f *fakeSleepTimes) DeleteLast(context.Context, int64) (*sleeptimes.SleepTime, error) {
	if len(f.windows) == 0 {
		return nil, sleeptimes.ErrNotFound
	}
	last := f.windows[len(f.windows)-1]
	f.windows = f.windows[:len(f.windows)-1]
	return &last, nil
}

func window(id, dayID int64, cmd sleeptimes.Command) sleeptimes.SleepTime {
	return sleeptimes.SleepTime{
		ID:              id,
		DayID:           dayID,
		Onset:           cmd.Onset,
		OnsetUTCOffset:  cmd.OnsetUTCOffset,
		Wakeup:          cmd.Wakeup,
		WakeupUTCOffset: cmd.WakeupUTCOffset,
	}
}

type fakeDataPoints struct {
	points  []datapoints.DataPoint
	nearest *datapoints.DataPoint
	targets []time.Time
	queries int
}

func (f *fakeDataPoints) QueryWindow(context.Context, int64, time.Time) ([]datapoints.DataPoint, error) {
	f.queries++
	return f.points, nil
}

func (f *fakeDataPoints) FindNearest(_ context.Context, _ int64, target time.Time, _ int) (*datapoints.DataPoint, error) {
	f.targets = append(f.targets, target)
	if f.nearest == nil {
		return nil, datapoints.ErrNotFound
	}
	return f.nearest, nil
}

type fakeExporter struct {
	mu         sync.Mutex
	published  [][]export.Kind
	removed    []string
	publishErr error
}

func (f *fakeExporter) Publish(_ context.Context, _ string, kinds ...export.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, kinds)
	return f.publishErr
}

func (f *fakeExporter) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}
