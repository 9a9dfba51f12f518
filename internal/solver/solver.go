// Package solver keeps a dragged sleep window from overlapping the other
// windows of the same day.
package solver

import (
	"errors"
	"fmt"
)

// MaxLoops bounds the number of passes Resolve makes over the other intervals.
const MaxLoops = 100

var (
	// ErrNoConvergence reports that the endpoints kept moving after MaxLoops passes.
	ErrNoConvergence = errors.New("interval resolution did not converge")
	// ErrInvalidInterval reports an interval that is neither empty nor a pair.
	ErrInvalidInterval = errors.New("interval must be empty or hold two points")
)

// Interval is an inclusive pair of slider points. An empty interval is unset.
type Interval []int

// Empty reports whether the interval is unset.
func (i Interval) Empty() bool {
	return len(i) == 0
}

func (i Interval) validate() error {
	if len(i) != 0 && len(i) != 2 {
		return fmt.Errorf("%w: got %d points", ErrInvalidInterval, len(i))
	}
	return nil
}

// Resolve moves the endpoints of dragged out of every interval in others.
//
// The side each endpoint is pushed to is fixed by comparing the midpoint of
// the dragged interval as received with the midpoint of the other interval.
// An endpoint inside another interval jumps just past it; a dragged interval
// that engulfs another is trimmed on the side facing it. Passes repeat until
// nothing moves.
func Resolve(dragged Interval, others []Interval) (Interval, error) {
	if err := dragged.validate(); err != nil {
		return nil, err
	}
	if dragged.Empty() {
		return dragged, nil
	}
	for _, other := range others {
		if err := other.validate(); err != nil {
			return nil, err
		}
	}

	lo, hi := dragged[0], dragged[1]
	sum := dragged[0] + dragged[1]

	for loops := 1; ; loops++ {
		startLo, startHi := lo, hi

		for _, other := range others {
			if other.Empty() {
				continue
			}
			right := sum > other[0]+other[1]

			if other[0] <= lo && lo <= other[1] {
				lo = past(other, right)
			}
			if other[0] <= hi && hi <= other[1] {
				hi = past(other, right)
			}
			if lo <= other[0] && hi >= other[1] {
				if right {
					lo = other[1] + 1
				} else {
					hi = other[0] - 1
				}
			}
		}

		if loops > MaxLoops {
			return nil, fmt.Errorf("%w after %d passes", ErrNoConvergence, loops)
		}
		if lo == startLo && hi == startHi {
			return Interval{lo, hi}, nil
		}
	}
}

func past(other Interval, right bool) int {
	if right {
		return other[1] + 1
	}
	return other[0] - 1
}

// Overlaps reports whether a and b share at least one point. Empty intervals
// overlap nothing.
func Overlaps(a, b Interval) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	return a[0] <= b[1] && b[0] <= a[1]
}
