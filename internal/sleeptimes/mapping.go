package sleeptimes

import (
	"github.com/JaimeStill/actigraphy/pkg/query"
	"github.com/JaimeStill/actigraphy/pkg/repository"
)

var columns = []string{
	"id", "day_id", "onset", "onset_utc_offset",
	"wakeup", "wakeup_utc_offset", "time_created", "time_updated",
}

var insertColumns = []string{"day_id", "onset", "onset_utc_offset", "wakeup", "wakeup_utc_offset"}

func projectionFor(table Table) *query.ProjectionMap {
	return query.
		NewProjectionMap("public", string(table), "st").
		Project("id", "ID").
		Project("day_id", "DayID").
		Project("onset", "Onset").
		Project("onset_utc_offset", "OnsetUTCOffset").
		Project("wakeup", "Wakeup").
		Project("wakeup_utc_offset", "WakeupUTCOffset").
		Project("time_created", "TimeCreated").
		Project("time_updated", "TimeUpdated")
}

var (
	manualProjection    = projectionFor(Manual)
	referenceProjection = projectionFor(Reference)
)

var byCreation = query.SortField{Field: "ID"}

func insertRow(r Row) []any {
	return []any{r.DayID, r.Onset.UTC(), r.OnsetUTCOffset, r.Wakeup.UTC(), r.WakeupUTCOffset}
}

func scanSleepTime(s repository.Scanner) (SleepTime, error) {
	var st SleepTime
	err := s.Scan(
		&st.ID,
		&st.DayID,
		&st.Onset,
		&st.OnsetUTCOffset,
		&st.Wakeup,
		&st.WakeupUTCOffset,
		&st.TimeCreated,
		&st.TimeUpdated,
	)
	return st, err
}
