package review

import (
	"github.com/maypok86/otter/v2"

	"github.com/JaimeStill/actigraphy/internal/slider"
)

// DefaultCacheSize bounds the number of cached transition descriptors.
const DefaultCacheSize = 10_000

type dstKey struct {
	subject string
	index   int
}

// dstEntry wraps the descriptor so that a day without a transition is
// cached as well.
type dstEntry struct {
	dst *slider.DST
}

type dstCache struct {
	cache *otter.Cache[dstKey, dstEntry]
}

func newDSTCache(size int) *dstCache {
	if size < 1 {
		size = DefaultCacheSize
	}
	return &dstCache{
		cache: otter.Must(&otter.Options[dstKey, dstEntry]{
			MaximumSize: size,
		}),
	}
}

func (c *dstCache) get(subject string, index int) (*slider.DST, bool) {
	e, ok := c.cache.GetIfPresent(dstKey{subject, index})
	return e.dst, ok
}

func (c *dstCache) set(subject string, index int, dst *slider.DST) {
	c.cache.Set(dstKey{subject, index}, dstEntry{dst: dst})
}

func (c *dstCache) invalidate(subject string, days int) {
	for i := range days {
		c.cache.Invalidate(dstKey{subject, i})
	}
}
