// Package datapoints implements the accelerometer sample domain: bulk
// storage at import, the review-window query, nearest-sample lookup and
// daylight saving detection over a window.
package datapoints

import (
	"time"

	"github.com/JaimeStill/actigraphy/internal/slider"
)

// DefaultNearestWindow is the search width, in minutes, of FindNearest.
const DefaultNearestWindow = 1440

// DataPoint is one epoch of sensor output. Timestamp is a naive UTC instant.
type DataPoint struct {
	ID                 int64     `json:"id"`
	SubjectID          int64     `json:"subject_id"`
	Timestamp          time.Time `json:"timestamp"`
	TimestampUTCOffset int       `json:"timestamp_utc_offset"`
	SensorAngle        float64   `json:"sensor_angle"`
	SensorAcceleration float64   `json:"sensor_acceleration"`
	NonWear            bool      `json:"non_wear"`
	TimeCreated        time.Time `json:"time_created"`
	TimeUpdated        time.Time `json:"time_updated"`
}

// TimestampWithTZ returns the timestamp in its recorded zone.
func (d DataPoint) TimestampWithTZ() time.Time {
	return slider.ApplyOffset(d.Timestamp, d.TimestampUTCOffset)
}

// Window returns the inclusive naive-UTC bounds of the samples loaded for
// the review day anchored on date: 11:00 the day before through 01:00 three
// days after.
func Window(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -1).Add(11 * time.Hour),
		midnight.AddDate(0, 0, 3).Add(time.Hour)
}
