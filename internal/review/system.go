// Package review implements the reviewer workflow over one subject: the
// day view, window edits, flags and the exports that follow every edit.
package review

import (
	"context"

	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/days"
	"github.com/JaimeStill/actigraphy/internal/export"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/subjects"
)

// System defines the public contract for review operations. Days are
// addressed by subject name and zero-based index in date order.
type System interface {
	Handler() *Handler

	View(ctx context.Context, subject string, index int) (*DayView, error)
	Datapoints(ctx context.Context, subject string, index int) ([]datapoints.DataPoint, error)

	// Drag moves one window to the given slider points, pushed clear of the
	// other windows of the day.
	Drag(ctx context.Context, subject string, index int, sleepTimeID int64, points [2]int) (*DragResult, error)
	AddInterval(ctx context.Context, subject string, index int) (*DragResult, error)
	RemoveInterval(ctx context.Context, subject string, index int) (*sleeptimes.SleepTime, error)

	SetFlags(ctx context.Context, subject string, index int, cmd days.FlagsCommand) (*days.Day, error)
	SetFinished(ctx context.Context, subject string, finished bool) (*subjects.Subject, error)
	Delete(ctx context.Context, subject string) error
}

// DragResult is a window after an edit with its slider position and
// formatted row.
type DragResult struct {
	SleepTime sleeptimes.SleepTime `json:"sleep_time"`
	Slider    Slider               `json:"slider"`
	Row       WindowRow            `json:"row"`
}

// Exporter republishes the artefacts derived from a subject's windows.
type Exporter interface {
	Publish(ctx context.Context, identifier string, kinds ...export.Kind) error
	Remove(ctx context.Context, identifier string) error
}

// Systems groups the domain systems the review service composes.
type Systems struct {
	Subjects   subjects.System
	Days       days.System
	SleepTimes sleeptimes.System
	DataPoints datapoints.System
	Exports    Exporter
}
