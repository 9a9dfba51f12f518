package datapoints

import (
	"github.com/JaimeStill/actigraphy/pkg/query"
	"github.com/JaimeStill/actigraphy/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "data_points", "dp").
	Project("id", "ID").
	Project("subject_id", "SubjectID").
	Project("timestamp", "Timestamp").
	Project("timestamp_utc_offset", "TimestampUTCOffset").
	Project("sensor_angle", "SensorAngle").
	Project("sensor_acceleration", "SensorAcceleration").
	Project("non_wear", "NonWear").
	Project("time_created", "TimeCreated").
	Project("time_updated", "TimeUpdated")

var chronological = []query.SortField{
	{Field: "Timestamp"},
	{Field: "TimestampUTCOffset"},
}

var insertColumns = []string{
	"subject_id", "timestamp", "timestamp_utc_offset",
	"sensor_angle", "sensor_acceleration", "non_wear",
}

func scanDataPoint(s repository.Scanner) (DataPoint, error) {
	var d DataPoint
	err := s.Scan(
		&d.ID,
		&d.SubjectID,
		&d.Timestamp,
		&d.TimestampUTCOffset,
		&d.SensorAngle,
		&d.SensorAcceleration,
		&d.NonWear,
		&d.TimeCreated,
		&d.TimeUpdated,
	)
	return d, err
}
