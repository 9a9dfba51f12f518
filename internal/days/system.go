package days

import "context"

// System defines the public contract for day domain operations.
type System interface {
	Handler() *Handler

	// Find returns the day at zero-based position index in date order.
	Find(ctx context.Context, subjectName string, index int) (*Day, error)
	List(ctx context.Context, subjectName string) ([]Day, error)
	Count(ctx context.Context, subjectName string) (int, error)
	SetFlags(ctx context.Context, subjectName string, index int, cmd FlagsCommand) (*Day, error)
}
