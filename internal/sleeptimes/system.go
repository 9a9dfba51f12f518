package sleeptimes

import "context"

// System defines the public contract for sleep window operations.
// Reference windows are read-only.
type System interface {
	// ListByDay returns the editable windows of a day in creation order.
	ListByDay(ctx context.Context, dayID int64) ([]SleepTime, error)
	ListReferenceByDay(ctx context.Context, dayID int64) ([]SleepTime, error)
	// ListBySubject returns every day of a subject with its editable windows.
	ListBySubject(ctx context.Context, subjectID int64) ([]DaySleepTimes, error)

	Create(ctx context.Context, dayID int64, cmd Command) (*SleepTime, error)
	Update(ctx context.Context, id int64, cmd Command) (*SleepTime, error)
	// DeleteLast removes the most recently created window of a day.
	DeleteLast(ctx context.Context, dayID int64) (*SleepTime, error)
}
