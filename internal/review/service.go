package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/days"
	"github.com/JaimeStill/actigraphy/internal/export"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/slider"
	"github.com/JaimeStill/actigraphy/internal/solver"
	"github.com/JaimeStill/actigraphy/internal/subjects"
	"github.com/JaimeStill/actigraphy/pkg/formatting"
	"github.com/JaimeStill/actigraphy/pkg/handlers"
)

// Options configures the review service.
type Options struct {
	Steps        int
	TimeFormat   string
	DefaultSleep time.Duration
	CacheSize    int
}

type service struct {
	Systems
	mapper       slider.Mapper
	formatter    *formatting.TimeFormatter
	defaultSleep time.Duration
	cache        *dstCache
	logger       *slog.Logger
}

// New creates the review service over sys.
func New(sys Systems, opts Options, logger *slog.Logger) (System, error) {
	formatter, err := formatting.NewTimeFormatter(opts.TimeFormat)
	if err != nil {
		return nil, err
	}

	return &service{
		Systems:      sys,
		mapper:       slider.New(opts.Steps),
		formatter:    formatter,
		defaultSleep: opts.DefaultSleep,
		cache:        newDSTCache(opts.CacheSize),
		logger:       logger.With("system", "review"),
	}, nil
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) View(ctx context.Context, subject string, index int) (*DayView, error) {
	day, err := s.Days.Find(ctx, subject, index)
	if err != nil {
		return nil, err
	}

	points, err := s.DataPoints.QueryWindow(ctx, day.SubjectID, day.Date)
	if err != nil {
		return nil, err
	}

	dst, err := s.dst(subject, index, day, points)
	if err != nil {
		return nil, err
	}

	windows, err := s.SleepTimes.ListByDay(ctx, day.ID)
	if err != nil {
		return nil, err
	}

	references, err := s.SleepTimes.ListReferenceByDay(ctx, day.ID)
	if err != nil {
		return nil, err
	}

	return s.buildView(viewInput{
		subject:    subject,
		index:      index,
		day:        day,
		windows:    windows,
		references: references,
		points:     points,
		dst:        dst,
	}), nil
}

func (s *service) Datapoints(ctx context.Context, subject string, index int) ([]datapoints.DataPoint, error) {
	day, err := s.Days.Find(ctx, subject, index)
	if err != nil {
		return nil, err
	}
	return s.DataPoints.QueryWindow(ctx, day.SubjectID, day.Date)
}

func (s *service) Drag(
	ctx context.Context,
	subject string,
	index int,
	sleepTimeID int64,
	points [2]int,
) (*DragResult, error) {
	if points[0] < 0 || points[1] > s.mapper.Steps || points[0] > points[1] {
		return nil, fmt.Errorf("%w: %v on an axis of %d steps", ErrInvalidPoints, points, s.mapper.Steps)
	}

	day, err := s.Days.Find(ctx, subject, index)
	if err != nil {
		return nil, err
	}

	samples, err := s.DataPoints.QueryWindow(ctx, day.SubjectID, day.Date)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s day %d", ErrNoData, subject, index)
	}

	dst, err := s.dst(subject, index, day, samples)
	if err != nil {
		return nil, err
	}

	windows, err := s.SleepTimes.ListByDay(ctx, day.ID)
	if err != nil {
		return nil, err
	}

	others := make([]solver.Interval, 0, len(windows))
	found := false
	for _, st := range windows {
		if st.ID == sleepTimeID {
			found = true
			continue
		}
		sl := s.slider(st, day.Date, dst)
		others = append(others, solver.Interval{sl.Points[0], sl.Points[1]})
	}
	if !found {
		return nil, fmt.Errorf("%w: window %d on %s day %d", sleeptimes.ErrNotFound, sleepTimeID, subject, index)
	}

	resolved, err := solver.Resolve(solver.Interval{points[0], points[1]}, others)
	if err != nil {
		return nil, err
	}
	for _, o := range others {
		if solver.Overlaps(resolved, o) {
			return nil, fmt.Errorf("%w: %v against %v", ErrOverlap, resolved, o)
		}
	}

	base := samples[0].TimestampUTCOffset
	onset := s.mapper.Time(resolved[0], day.Date, base, dst)
	wakeup := s.mapper.Time(resolved[1], day.Date, base, dst)

	st, err := s.SleepTimes.Update(ctx, sleepTimeID, sleeptimes.NewCommand(onset, wakeup))
	if err != nil {
		return nil, err
	}

	s.logger.Info(
		"sleep window moved",
		"subject", subject,
		"day", index,
		"sleep_time", sleepTimeID,
		"requested", points,
		"resolved", resolved,
	)
	s.publish(ctx, subject, export.SleepLog, export.MultipleSleep)

	return &DragResult{
		SleepTime: *st,
		Slider:    Slider{ID: st.ID, Points: [2]int{resolved[0], resolved[1]}},
		Row:       s.row(*st),
	}, nil
}

func (s *service) AddInterval(ctx context.Context, subject string, index int) (*DragResult, error) {
	day, err := s.Days.Find(ctx, subject, index)
	if err != nil {
		return nil, err
	}

	y, m, d := day.Date.Date()
	wall := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(s.defaultSleep)

	nearest, err := s.DataPoints.FindNearest(ctx, day.SubjectID, wall, datapoints.DefaultNearestWindow)
	if err != nil {
		return nil, fmt.Errorf("offset for new window: %w", err)
	}

	offset := nearest.TimestampUTCOffset
	at := time.Date(y, m, d, 0, 0, 0, 0, slider.Zone(offset)).Add(s.defaultSleep)

	st, err := s.SleepTimes.Create(ctx, day.ID, sleeptimes.NewCommand(at, at))
	if err != nil {
		return nil, err
	}

	samples, err := s.DataPoints.QueryWindow(ctx, day.SubjectID, day.Date)
	if err != nil {
		return nil, err
	}
	dst, err := s.dst(subject, index, day, samples)
	if err != nil {
		return nil, err
	}

	s.logger.Info("sleep window added", "subject", subject, "day", index, "sleep_time", st.ID)
	s.publish(ctx, subject, export.DataCleaning)

	return &DragResult{
		SleepTime: *st,
		Slider:    s.slider(*st, day.Date, dst),
		Row:       s.row(*st),
	}, nil
}

func (s *service) RemoveInterval(ctx context.Context, subject string, index int) (*sleeptimes.SleepTime, error) {
	day, err := s.Days.Find(ctx, subject, index)
	if err != nil {
		return nil, err
	}

	st, err := s.SleepTimes.DeleteLast(ctx, day.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("sleep window removed", "subject", subject, "day", index, "sleep_time", st.ID)
	s.publish(ctx, subject, export.DataCleaning)
	return st, nil
}

func (s *service) SetFlags(ctx context.Context, subject string, index int, cmd days.FlagsCommand) (*days.Day, error) {
	if cmd.Empty() {
		return nil, fmt.Errorf("%w: no flags given", handlers.ErrInvalidRequest)
	}

	day, err := s.Days.SetFlags(ctx, subject, index, cmd)
	if err != nil {
		return nil, err
	}

	if cmd.IsMissingSleep != nil {
		s.publish(ctx, subject, export.DataCleaning)
	}
	return day, nil
}

func (s *service) SetFinished(ctx context.Context, subject string, finished bool) (*subjects.Subject, error) {
	return s.Subjects.SetFinished(ctx, subject, finished)
}

func (s *service) Delete(ctx context.Context, subject string) error {
	n, err := s.Days.Count(ctx, subject)
	if err != nil {
		return err
	}

	if err := s.Subjects.Delete(ctx, subject); err != nil {
		return err
	}
	s.cache.invalidate(subject, n)

	if err := s.Exports.Remove(ctx, subject); err != nil {
		s.logger.Error("remove exports failed", "subject", subject, "error", err)
	}
	return nil
}

// dst returns the cached transition of a day, detecting it on a miss.
func (s *service) dst(subject string, index int, day *days.Day, points []datapoints.DataPoint) (*slider.DST, error) {
	if dst, ok := s.cache.get(subject, index); ok {
		return dst, nil
	}

	dst, err := datapoints.DetectDST(points, day.Date)
	if err != nil {
		return nil, err
	}
	s.cache.set(subject, index, dst)
	return dst, nil
}

// publish refreshes exports after a committed edit. The edit stands when
// publishing fails; the next edit or download republishes.
func (s *service) publish(ctx context.Context, subject string, kinds ...export.Kind) {
	if err := s.Exports.Publish(ctx, subject, kinds...); err != nil {
		s.logger.Error("publish exports failed", "subject", subject, "kinds", kinds, "error", err)
	}
}
