package days

import (
	"github.com/JaimeStill/actigraphy/pkg/query"
	"github.com/JaimeStill/actigraphy/pkg/repository"
)

const subjectName = "s.name"

var projection = query.
	NewProjectionMap("public", "days", "d").
	Project("id", "ID").
	Project("subject_id", "SubjectID").
	Project("date", "Date").
	Project("is_multiple_sleep", "IsMultipleSleep").
	Project("is_missing_sleep", "IsMissingSleep").
	Project("is_reviewed", "IsReviewed").
	Project("time_created", "TimeCreated").
	Project("time_updated", "TimeUpdated").
	Join("public", "subjects", "s", "JOIN", "s.id = d.subject_id")

var byDate = query.SortField{Field: "Date"}

func bySubject(name string) *query.Builder {
	return query.
		NewBuilder(projection, byDate).
		WhereEquals(subjectName, name)
}

func scanDay(s repository.Scanner) (Day, error) {
	var d Day
	err := s.Scan(
		&d.ID,
		&d.SubjectID,
		&d.Date,
		&d.IsMultipleSleep,
		&d.IsMissingSleep,
		&d.IsReviewed,
		&d.TimeCreated,
		&d.TimeUpdated,
	)
	return d, err
}
