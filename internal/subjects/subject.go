// Package subjects implements the subject domain: one participant's
// recording together with its days, sleep windows and samples.
package subjects

import (
	"time"

	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
)

// Subject is one participant recording.
type Subject struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	NPointsPerDay int       `json:"n_points_per_day"`
	IsFinished    bool      `json:"is_finished"`
	TimeCreated   time.Time `json:"time_created"`
	TimeUpdated   time.Time `json:"time_updated"`
}

// NewDay is a day to create with its initial windows.
type NewDay struct {
	Date       time.Time
	SleepTimes []sleeptimes.Command
	References []sleeptimes.Command
}

// CreateCommand carries everything imported for a new subject.
// It is persisted in a single transaction.
type CreateCommand struct {
	Name          string
	NPointsPerDay int
	Days          []NewDay
	DataPoints    []datapoints.DataPoint
}
