package subjects

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/actigraphy/pkg/query"
	"github.com/JaimeStill/actigraphy/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "subjects", "s").
	Project("id", "ID").
	Project("name", "Name").
	Project("n_points_per_day", "NPointsPerDay").
	Project("is_finished", "IsFinished").
	Project("time_created", "TimeCreated").
	Project("time_updated", "TimeUpdated")

var defaultSort = query.SortField{Field: "Name"}

// Filters contains optional filtering criteria for subject queries.
// Nil fields are ignored.
type Filters struct {
	IsFinished *bool `json:"is_finished,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEquals("IsFinished", f.IsFinished)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("is_finished"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsFinished = &b
		}
	}

	return f
}

func scanSubject(s repository.Scanner) (Subject, error) {
	var sub Subject
	err := s.Scan(
		&sub.ID,
		&sub.Name,
		&sub.NPointsPerDay,
		&sub.IsFinished,
		&sub.TimeCreated,
		&sub.TimeUpdated,
	)
	return sub, err
}
