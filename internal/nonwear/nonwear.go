// Package nonwear finds runs of non-wear samples and places them on the
// review axis.
package nonwear

import "time"

// Blocks returns the inclusive start and end index of every maximal run of
// true values, in order. A run of one sample is reported as (i, i).
func Blocks(flags []bool) [][2]int {
	blocks := make([][2]int, 0)
	start := -1

	for i, f := range flags {
		switch {
		case f && start < 0:
			start = i
		case !f && start >= 0:
			blocks = append(blocks, [2]int{start, i - 1})
			start = -1
		}
	}
	if start >= 0 {
		blocks = append(blocks, [2]int{start, len(flags) - 1})
	}

	return blocks
}

// BlockBoundaries flattens Blocks into start, end, start, end, ... indices.
// The result always has even length: a one-sample run at i yields i twice
// rather than the single index a per-sample endpoint scan would emit.
func BlockBoundaries(flags []bool) []int {
	blocks := Blocks(flags)
	out := make([]int, 0, 2*len(blocks))
	for _, b := range blocks {
		out = append(out, b[0], b[1])
	}
	return out
}

// Expand maps coarse non-wear scores onto n fine samples. Coarse window i
// covers fine indices [i*ratio, i*ratio+ratio) and marks them when its score
// exceeds 1. Indices beyond n are dropped.
func Expand(scores []float64, ratio, n int) []bool {
	flags := make([]bool, max(n, 0))
	if ratio < 1 {
		return flags
	}

	for i, score := range scores {
		if score <= 1 {
			continue
		}
		for j := i * ratio; j < i*ratio+ratio && j < n; j++ {
			flags[j] = true
		}
	}

	return flags
}

// MaxMeasurements is the number of samples of spacing delta that fit on an
// axis of 36 hours plus shift seconds.
func MaxMeasurements(shift int, delta time.Duration) int {
	if delta <= 0 {
		return 0
	}
	hours := 36 + float64(shift)/3600
	return int(hours * 3600 / delta.Seconds())
}

// Fractions converts boundary indices to fractions of the axis. A series
// that is shorter than the axis and does not start at noon is assumed to be
// missing its head, so its fractions are shifted right by the missing share.
func Fractions(boundaries []int, samples, maxMeasurements int, startsAtNoon bool) []float64 {
	out := make([]float64, len(boundaries))
	if maxMeasurements <= 0 {
		return out
	}

	var offset float64
	if samples != maxMeasurements && !startsAtNoon {
		offset = 1 - float64(samples)/float64(maxMeasurements)
	}

	for i, b := range boundaries {
		out[i] = float64(b)/float64(maxMeasurements) + offset
	}
	return out
}
