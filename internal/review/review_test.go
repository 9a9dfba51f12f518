package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/days"
	"github.com/JaimeStill/actigraphy/internal/export"
	"github.com/JaimeStill/actigraphy/internal/review"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/slider"
	"github.com/JaimeStill/actigraphy/internal/solver"
	"github.com/JaimeStill/actigraphy/internal/subjects"
	"github.com/JaimeStill/actigraphy/pkg/handlers"
)

var day1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func utc(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

// hourly returns samples every hour from 10:00 on 1 January through 01:00
// on 3 January, all at offset.
func hourly(offset int) []datapoints.DataPoint {
	var points []datapoints.DataPoint
	for ts := utc(1, 10); !ts.After(utc(3, 1)); ts = ts.Add(time.Hour) {
		points = append(points, datapoints.DataPoint{
			SubjectID:          7,
			Timestamp:          ts,
			TimestampUTCOffset: offset,
			SensorAngle:        10,
			SensorAcceleration: 5,
		})
	}
	return points
}

type fixture struct {
	subjects   *fakeSubjects
	days       *fakeDays
	sleeptimes *fakeSleepTimes
	datapoints *fakeDataPoints
	exports    *fakeExporter
	sys        review.System
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		subjects: &fakeSubjects{},
		days: &fakeDays{list: []days.Day{
			{ID: 40, SubjectID: 7, Date: day1},
			{ID: 41, SubjectID: 7, Date: day1.AddDate(0, 0, 1)},
		}},
		sleeptimes: &fakeSleepTimes{
			windows: []sleeptimes.SleepTime{
				{ID: 1, DayID: 40, Onset: utc(1, 22), Wakeup: utc(2, 6)},
				{ID: 2, DayID: 40, Onset: utc(2, 14), Wakeup: utc(2, 16)},
			},
			references: []sleeptimes.SleepTime{
				{ID: 9, DayID: 40, Onset: utc(1, 23), Wakeup: utc(2, 7)},
			},
			nextID: 2,
		},
		datapoints: &fakeDataPoints{points: hourly(0)},
		exports:    &fakeExporter{},
	}

	sys, err := review.New(review.Systems{
		Subjects:   f.subjects,
		Days:       f.days,
		SleepTimes: f.sleeptimes,
		DataPoints: f.datapoints,
		Exports:    f.exports,
	}, review.Options{
		Steps:        slider.DefaultSteps,
		TimeFormat:   "%H:%M %Z",
		DefaultSleep: 11 * time.Hour,
	}, discard())
	require.NoError(t, err)

	f.sys = sys
	return f
}

func TestNewRejectsTimeFormat(t *testing.T) {
	_, err := review.New(review.Systems{}, review.Options{TimeFormat: "%"}, discard())
	require.Error(t, err)
}

func TestIncluded(t *testing.T) {
	got := review.Included(hourly(0), day1)

	require.Len(t, got, 36)
	assert.Equal(t, utc(1, 12), got[0].Timestamp)
	assert.Equal(t, utc(2, 23), got[len(got)-1].Timestamp)
}

func TestIncludedUsesLocalTime(t *testing.T) {
	// At +02:00 the 10:00 UTC sample reads 12:00 local and the 22:00 UTC
	// sample on the 2nd already falls on the 3rd.
	got := review.Included(hourly(7200), day1)

	require.NotEmpty(t, got)
	assert.Equal(t, utc(1, 10), got[0].Timestamp)
	assert.Equal(t, utc(2, 21), got[len(got)-1].Timestamp)
}

func TestTitle(t *testing.T) {
	included := review.Included(hourly(0), day1)

	assert.Equal(t, "Day 1: Monday, 01 January 2024", review.Title(0, included, day1))
	assert.Equal(t, "Day 3: Monday, 01 January 2024", review.Title(2, nil, day1))
}

func TestNonWearBands(t *testing.T) {
	included := review.Included(hourly(0), day1)
	for i := 2; i <= 4; i++ {
		included[i].NonWear = true
	}

	got := review.NonWearBands(included, nil)

	require.Len(t, got, 1)
	assert.InDelta(t, 2.0/36, got[0].Start, 1e-9)
	assert.InDelta(t, 4.0/36, got[0].End, 1e-9)
	assert.Empty(t, review.NonWearBands(included[:1], nil))
}

func TestRescaleAcceleration(t *testing.T) {
	assert.Equal(t, -210.0, review.RescaleAcceleration(0))
	assert.Equal(t, 40.0, review.RescaleAcceleration(5))
}

func TestView(t *testing.T) {
	f := newFixture(t)

	v, err := f.sys.View(context.Background(), "subject01", 0)
	require.NoError(t, err)

	assert.Equal(t, "Day 1: Monday, 01 January 2024", v.Title)
	assert.Nil(t, v.DST)
	assert.Equal(t, slider.DefaultSteps, v.Steps)
	assert.Equal(t, []review.Slider{
		{ID: 1, Points: [2]int{600, 1080}},
		{ID: 2, Points: [2]int{1560, 1680}},
	}, v.Sliders)
	assert.Equal(t, review.WindowRow{ID: 1, Onset: "22:00 UTC", Wakeup: "06:00 UTC", Duration: "8:00:00"}, v.SleepTimes[0])
	require.Len(t, v.References, 1)
	assert.Equal(t, "23:00 UTC", v.References[0].Onset)
	assert.Len(t, v.Series, 36)
	assert.Equal(t, 40.0, v.Series[0].Acceleration)
	assert.InDelta(t, 600.0/2160, v.SleepBands[0].Start, 1e-9)
	assert.Empty(t, v.NonWearBands)
}

func TestViewUnknownDay(t *testing.T) {
	f := newFixture(t)

	_, err := f.sys.View(context.Background(), "subject01", 5)
	require.ErrorIs(t, err, days.ErrNotFound)
}

func TestViewTooManyOffsets(t *testing.T) {
	f := newFixture(t)
	for i := range f.datapoints.points {
		f.datapoints.points[i].TimestampUTCOffset = (i % 3) * 3600
	}

	_, err := f.sys.View(context.Background(), "subject01", 0)
	require.ErrorIs(t, err, datapoints.ErrTooManyOffsets)
}

func TestDragPushesClear(t *testing.T) {
	f := newFixture(t)

	res, err := f.sys.Drag(context.Background(), "subject01", 0, 1, [2]int{1500, 1600})
	require.NoError(t, err)

	assert.Equal(t, [2]int{1500, 1559}, res.Slider.Points)
	require.Len(t, f.sleeptimes.updates, 1)
	assert.Equal(t, utc(2, 13), f.sleeptimes.updates[0].Onset)
	assert.Equal(t, utc(2, 13).Add(59*time.Minute), f.sleeptimes.updates[0].Wakeup)
	assert.Equal(t, "13:00 UTC", res.Row.Onset)
	assert.Equal(t, "0:59:00", res.Row.Duration)
	assert.Equal(t, [][]export.Kind{{export.SleepLog, export.MultipleSleep}}, f.exports.published)
}

func TestDragKeepsOffset(t *testing.T) {
	f := newFixture(t)
	f.datapoints.points = hourly(3600)

	_, err := f.sys.Drag(context.Background(), "subject01", 0, 2, [2]int{0, 60})
	require.NoError(t, err)

	cmd := f.sleeptimes.updates[0]
	assert.Equal(t, 3600, cmd.OnsetUTCOffset)
	assert.Equal(t, utc(1, 11), cmd.Onset)
	assert.Equal(t, utc(1, 12), cmd.Wakeup)
}

func TestDragRejects(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		id     int64
		points [2]int
		want   error
	}{
		{"negative", 0, 1, [2]int{-1, 10}, review.ErrInvalidPoints},
		{"past axis", 0, 1, [2]int{10, 2161}, review.ErrInvalidPoints},
		{"reversed", 0, 1, [2]int{20, 10}, review.ErrInvalidPoints},
		{"unknown window", 0, 99, [2]int{10, 20}, sleeptimes.ErrNotFound},
		{"unknown day", 4, 1, [2]int{10, 20}, days.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.sys.Drag(context.Background(), "subject01", tt.index, tt.id, tt.points)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.sleeptimes.updates)
			assert.Empty(t, f.exports.published)
		})
	}
}

func TestDragNoData(t *testing.T) {
	f := newFixture(t)
	f.datapoints.points = nil

	_, err := f.sys.Drag(context.Background(), "subject01", 0, 1, [2]int{10, 20})
	require.ErrorIs(t, err, review.ErrNoData)
}

func TestDragBetweenAdjacentWindows(t *testing.T) {
	f := newFixture(t)
	f.sleeptimes.windows = append(f.sleeptimes.windows,
		sleeptimes.SleepTime{ID: 3, DayID: 40, Onset: utc(1, 12).Add(100 * time.Minute), Wakeup: utc(1, 12).Add(200 * time.Minute)},
		sleeptimes.SleepTime{ID: 4, DayID: 40, Onset: utc(1, 12).Add(201 * time.Minute), Wakeup: utc(1, 12).Add(300 * time.Minute)},
	)

	_, err := f.sys.Drag(context.Background(), "subject01", 0, 1, [2]int{150, 250})
	require.ErrorIs(t, err, review.ErrOverlap)
	assert.Equal(t, 409, review.MapHTTPStatus(err))
	assert.Empty(t, f.sleeptimes.updates)
}

func TestDragPublishFailureKeepsEdit(t *testing.T) {
	f := newFixture(t)
	f.exports.publishErr = errors.New("storage down")

	_, err := f.sys.Drag(context.Background(), "subject01", 0, 1, [2]int{100, 200})
	require.NoError(t, err)
	assert.Len(t, f.sleeptimes.updates, 1)
}

func TestAddInterval(t *testing.T) {
	f := newFixture(t)
	f.datapoints.nearest = &datapoints.DataPoint{Timestamp: utc(1, 10), TimestampUTCOffset: 3600}

	res, err := f.sys.AddInterval(context.Background(), "subject01", 0)
	require.NoError(t, err)

	require.Equal(t, []time.Time{utc(1, 11)}, f.datapoints.targets)
	require.Len(t, f.sleeptimes.created, 1)
	cmd := f.sleeptimes.created[0]
	assert.Equal(t, utc(1, 10), cmd.Onset)
	assert.Equal(t, cmd.Onset, cmd.Wakeup)
	assert.Equal(t, 3600, cmd.OnsetUTCOffset)
	assert.Equal(t, 3600, cmd.WakeupUTCOffset)

	assert.Equal(t, int64(3), res.SleepTime.ID)
	assert.Equal(t, [2]int{-60, -60}, res.Slider.Points)
	assert.Equal(t, "0:00:00", res.Row.Duration)
	assert.Equal(t, [][]export.Kind{{export.DataCleaning}}, f.exports.published)
}

func TestAddIntervalWithoutSamples(t *testing.T) {
	f := newFixture(t)

	_, err := f.sys.AddInterval(context.Background(), "subject01", 0)
	require.ErrorIs(t, err, datapoints.ErrNotFound)
	assert.Empty(t, f.sleeptimes.created)
}

func TestRemoveInterval(t *testing.T) {
	f := newFixture(t)

	st, err := f.sys.RemoveInterval(context.Background(), "subject01", 0)
	require.NoError(t, err)

	assert.Equal(t, int64(2), st.ID)
	assert.Len(t, f.sleeptimes.windows, 1)
	assert.Equal(t, [][]export.Kind{{export.DataCleaning}}, f.exports.published)
}

func TestSetFlags(t *testing.T) {
	yes := true

	t.Run("missing sleep republishes", func(t *testing.T) {
		f := newFixture(t)

		d, err := f.sys.SetFlags(context.Background(), "subject01", 1, days.FlagsCommand{IsMissingSleep: &yes})
		require.NoError(t, err)
		assert.True(t, d.IsMissingSleep)
		assert.Equal(t, [][]export.Kind{{export.DataCleaning}}, f.exports.published)
	})

	t.Run("review flag only", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.sys.SetFlags(context.Background(), "subject01", 1, days.FlagsCommand{IsReviewed: &yes})
		require.NoError(t, err)
		assert.Empty(t, f.exports.published)
	})

	t.Run("empty", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.sys.SetFlags(context.Background(), "subject01", 1, days.FlagsCommand{})
		require.ErrorIs(t, err, handlers.ErrInvalidRequest)
		assert.Empty(t, f.days.flags)
	})
}

func TestSetFinished(t *testing.T) {
	f := newFixture(t)

	s, err := f.sys.SetFinished(context.Background(), "subject01", true)
	require.NoError(t, err)
	assert.True(t, s.IsFinished)
	assert.True(t, f.subjects.finished["subject01"])
}

func TestDelete(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.sys.Delete(context.Background(), "subject01"))
	assert.Equal(t, []string{"subject01"}, f.subjects.deleted)
	assert.Equal(t, []string{"subject01"}, f.exports.removed)
}

func TestDeleteFailureKeepsExports(t *testing.T) {
	f := newFixture(t)
	f.subjects.deleteErr = subjects.ErrNotFound

	err := f.sys.Delete(context.Background(), "subject01")
	require.ErrorIs(t, err, subjects.ErrNotFound)
	assert.Empty(t, f.exports.removed)
}

func TestDeleteInvalidatesTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sys.View(ctx, "subject01", 0)
	require.NoError(t, err)

	// A cached descriptor would hide the new offsets.
	require.NoError(t, f.sys.Delete(ctx, "subject01"))
	for i := range f.datapoints.points {
		f.datapoints.points[i].TimestampUTCOffset = (i % 3) * 3600
	}

	_, err = f.sys.View(ctx, "subject01", 0)
	require.ErrorIs(t, err, datapoints.ErrTooManyOffsets)
}

func TestViewCachesTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sys.View(ctx, "subject01", 0)
	require.NoError(t, err)

	for i := range f.datapoints.points {
		f.datapoints.points[i].TimestampUTCOffset = (i % 3) * 3600
	}

	_, err = f.sys.View(ctx, "subject01", 0)
	require.NoError(t, err)
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{handlers.ErrInvalidRequest, 400},
		{review.ErrInvalidPoints, 400},
		{subjects.ErrNotFound, 404},
		{days.ErrNotFound, 404},
		{sleeptimes.ErrNotFound, 404},
		{review.ErrNoData, 404},
		{review.ErrOverlap, 409},
		{solver.ErrNoConvergence, 409},
		{errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, review.MapHTTPStatus(tt.err))
		})
	}
}
