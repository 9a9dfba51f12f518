package subjects

import (
	"context"

	"github.com/JaimeStill/actigraphy/pkg/pagination"
)

// System defines the public contract for subject domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Subject], error)

	Find(ctx context.Context, name string) (*Subject, error)
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, cmd CreateCommand) (*Subject, error)
	SetFinished(ctx context.Context, name string, finished bool) (*Subject, error)
	// Delete removes the subject and everything it owns.
	Delete(ctx context.Context, name string) error
}
