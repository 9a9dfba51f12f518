package datapoints

import (
	"fmt"
	"time"

	"github.com/JaimeStill/actigraphy/internal/slider"
)

// DetectDST looks for a daylight saving transition among the samples that
// fall on the review axis of date, judged by their naive timestamps: from
// noon on date through the end of the following day. One distinct offset
// means no transition and a nil result.
func DetectDST(points []DataPoint, date time.Time) (*slider.DST, error) {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	window := make([]DataPoint, 0, len(points))
	offsets := make(map[int]struct{})
	for _, p := range points {
		ts := p.Timestamp.UTC()
		pd := truncateDay(ts)
		if (pd.Equal(day) && ts.Hour() >= 12) || pd.Equal(next) {
			window = append(window, p)
			offsets[p.TimestampUTCOffset] = struct{}{}
		}
	}

	switch {
	case len(offsets) <= 1:
		return nil, nil
	case len(offsets) > 2:
		return nil, fmt.Errorf("%w: found %d on %s", ErrTooManyOffsets, len(offsets), day.Format(time.DateOnly))
	}

	for i := 0; i+1 < len(window); i++ {
		shift := window[i].TimestampUTCOffset - window[i+1].TimestampUTCOffset
		if shift != 0 {
			return &slider.DST{
				Pivot: window[i].TimestampWithTZ(),
				Shift: shift,
			}, nil
		}
	}

	return nil, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
