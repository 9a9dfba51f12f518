// Package days implements the review-day domain. A day is one calendar
// date of a subject's recording; days are addressed by their zero-based
// position in date order.
package days

import "time"

// Day is one reviewable calendar date of a subject.
type Day struct {
	ID              int64     `json:"id"`
	SubjectID       int64     `json:"subject_id"`
	Date            time.Time `json:"date"`
	IsMultipleSleep bool      `json:"is_multiple_sleep"`
	IsMissingSleep  bool      `json:"is_missing_sleep"`
	IsReviewed      bool      `json:"is_reviewed"`
	TimeCreated     time.Time `json:"time_created"`
	TimeUpdated     time.Time `json:"time_updated"`
}

// FlagsCommand carries reviewer flag changes. Nil fields are left unchanged.
type FlagsCommand struct {
	IsMultipleSleep *bool `json:"is_multiple_sleep,omitempty"`
	IsMissingSleep  *bool `json:"is_missing_sleep,omitempty"`
	IsReviewed      *bool `json:"is_reviewed,omitempty"`
}

// Empty reports whether the command changes nothing.
func (c FlagsCommand) Empty() bool {
	return c.IsMultipleSleep == nil && c.IsMissingSleep == nil && c.IsReviewed == nil
}
