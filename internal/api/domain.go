package api

import (
	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/days"
	"github.com/JaimeStill/actigraphy/internal/export"
	"github.com/JaimeStill/actigraphy/internal/ingest"
	"github.com/JaimeStill/actigraphy/internal/review"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/subjects"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Subjects   subjects.System
	Days       days.System
	SleepTimes sleeptimes.System
	DataPoints datapoints.System
	Exports    *export.Publisher
	Review     review.System
	Ingest     *ingest.Pipeline
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	subjectsSystem := subjects.New(db, runtime.Logger, runtime.Pagination)
	daysSystem := days.New(db, runtime.Logger)
	sleepTimesSystem := sleeptimes.New(db, runtime.Logger)
	dataPointsSystem := datapoints.New(db, runtime.Logger)

	publisher := export.NewPublisher(
		runtime.Storage,
		subjectsSystem,
		sleepTimesSystem,
		runtime.Logger,
	)

	reviewSystem, err := review.New(
		review.Systems{
			Subjects:   subjectsSystem,
			Days:       daysSystem,
			SleepTimes: sleepTimesSystem,
			DataPoints: dataPointsSystem,
			Exports:    publisher,
		},
		runtime.Review,
		runtime.Logger,
	)
	if err != nil {
		return nil, err
	}

	return &Domain{
		Subjects:   subjectsSystem,
		Days:       daysSystem,
		SleepTimes: sleepTimesSystem,
		DataPoints: dataPointsSystem,
		Exports:    publisher,
		Review:     reviewSystem,
		Ingest:     ingest.NewPipeline(subjectsSystem, runtime.Review.DefaultSleep, runtime.Logger),
	}, nil
}
