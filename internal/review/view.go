package review

import (
	"fmt"
	"time"

	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/days"
	"github.com/JaimeStill/actigraphy/internal/nonwear"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/slider"
	"github.com/JaimeStill/actigraphy/pkg/formatting"
)

// TitleLayout renders the date in a review title.
const TitleLayout = "Monday, 02 January 2006"

// Slider is the slider position of one editable window.
type Slider struct {
	ID     int64  `json:"id"`
	Points [2]int `json:"points"`
}

// WindowRow is one formatted row of a window table.
type WindowRow struct {
	ID       int64  `json:"id"`
	Onset    string `json:"onset"`
	Wakeup   string `json:"wakeup"`
	Duration string `json:"duration"`
}

// Sample is one plotted sample. Acceleration is rescaled to share the
// angle axis.
type Sample struct {
	Timestamp    time.Time `json:"timestamp"`
	Angle        float64   `json:"angle"`
	Acceleration float64   `json:"acceleration"`
	NonWear      bool      `json:"non_wear"`
}

// Band is a shaded span given as fractions of the axis.
type Band struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// DayView is everything needed to render the review of one day.
type DayView struct {
	Subject      string      `json:"subject"`
	Index        int         `json:"index"`
	Title        string      `json:"title"`
	Day          days.Day    `json:"day"`
	DST          *slider.DST `json:"dst,omitempty"`
	Steps        int         `json:"steps"`
	Sliders      []Slider    `json:"sliders"`
	SleepTimes   []WindowRow `json:"sleep_times"`
	References   []WindowRow `json:"references"`
	Series       []Sample    `json:"series"`
	SleepBands   []Band      `json:"sleep_bands"`
	NonWearBands []Band      `json:"non_wear_bands"`
}

// RescaleAcceleration maps acceleration onto the angle axis.
func RescaleAcceleration(v float64) float64 {
	return v*50 - 210
}

// Included returns the samples plotted for date: from local noon on date
// through the end of the following local day.
func Included(points []datapoints.DataPoint, date time.Time) []datapoints.DataPoint {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	out := make([]datapoints.DataPoint, 0, len(points))
	for _, p := range points {
		local := p.TimestampWithTZ()
		ly, lm, ld := local.Date()
		localDay := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
		if (localDay.Equal(day) && local.Hour() >= 12) || localDay.Equal(next) {
			out = append(out, p)
		}
	}
	return out
}

// Title names a day by its one-based number and the date of its first
// plotted sample.
func Title(index int, included []datapoints.DataPoint, date time.Time) string {
	t := date
	if len(included) > 0 {
		t = included[0].Timestamp.UTC()
	}
	return fmt.Sprintf("Day %d: %s", index+1, t.Format(TitleLayout))
}

// NonWearBands returns the non-wear spans of the plotted samples.
func NonWearBands(included []datapoints.DataPoint, dst *slider.DST) []Band {
	bands := make([]Band, 0)
	if len(included) < 2 {
		return bands
	}

	flags := make([]bool, len(included))
	for i, p := range included {
		flags[i] = p.NonWear
	}

	shift := 0
	if dst != nil {
		shift = dst.Shift
	}
	delta := included[1].Timestamp.Sub(included[0].Timestamp)
	first := included[0].TimestampWithTZ()
	startsAtNoon := first.Hour() == 12 && first.Minute() == 0

	fractions := nonwear.Fractions(
		nonwear.BlockBoundaries(flags),
		len(included),
		nonwear.MaxMeasurements(shift, delta),
		startsAtNoon,
	)
	for i := 0; i+1 < len(fractions); i += 2 {
		bands = append(bands, Band{Start: fractions[i], End: fractions[i+1]})
	}
	return bands
}

type viewInput struct {
	subject    string
	index      int
	day        *days.Day
	windows    []sleeptimes.SleepTime
	references []sleeptimes.SleepTime
	points     []datapoints.DataPoint
	dst        *slider.DST
}

func (s *service) buildView(in viewInput) *DayView {
	included := Included(in.points, in.day.Date)

	v := &DayView{
		Subject:      in.subject,
		Index:        in.index,
		Title:        Title(in.index, included, in.day.Date),
		Day:          *in.day,
		DST:          in.dst,
		Steps:        s.mapper.Steps,
		Sliders:      make([]Slider, 0, len(in.windows)),
		SleepTimes:   make([]WindowRow, 0, len(in.windows)),
		References:   make([]WindowRow, 0, len(in.references)),
		Series:       make([]Sample, 0, len(included)),
		SleepBands:   make([]Band, 0, len(in.windows)),
		NonWearBands: NonWearBands(included, in.dst),
	}

	for _, st := range in.windows {
		sl := s.slider(st, in.day.Date, in.dst)
		v.Sliders = append(v.Sliders, sl)
		v.SleepTimes = append(v.SleepTimes, s.row(st))
		v.SleepBands = append(v.SleepBands, Band{
			Start: s.mapper.Fraction(sl.Points[0]),
			End:   s.mapper.Fraction(sl.Points[1]),
		})
	}
	for _, st := range in.references {
		v.References = append(v.References, s.row(st))
	}
	for _, p := range included {
		v.Series = append(v.Series, Sample{
			Timestamp:    p.TimestampWithTZ(),
			Angle:        p.SensorAngle,
			Acceleration: RescaleAcceleration(p.SensorAcceleration),
			NonWear:      p.NonWear,
		})
	}

	return v
}

func (s *service) slider(st sleeptimes.SleepTime, date time.Time, dst *slider.DST) Slider {
	return Slider{
		ID: st.ID,
		Points: [2]int{
			s.mapper.Point(st.OnsetWithTZ(), date, dst),
			s.mapper.Point(st.WakeupWithTZ(), date, dst),
		},
	}
}

func (s *service) row(st sleeptimes.SleepTime) WindowRow {
	onset, wakeup := st.OnsetWithTZ(), st.WakeupWithTZ()
	return WindowRow{
		ID:       st.ID,
		Onset:    s.formatter.Format(onset),
		Wakeup:   s.formatter.Format(wakeup),
		Duration: formatting.FormatDuration(wakeup.Sub(onset)),
	}
}
