// Package timeline stores ground-truth subtitle intervals and answers
// point-membership queries over them.
package timeline

import "sort"

// Interval is a closed time range [Start, End] in seconds during which a
// subtitle is displayed. Both endpoints are included in membership tests.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Contains reports whether t lies within the closed interval.
func (iv Interval) Contains(t float64) bool {
	return iv.Start <= t && t <= iv.End
}

// Index answers "is timestamp t inside any interval?" in O(log n).
// It is immutable after construction.
type Index struct {
	intervals []Interval
	starts    []float64
}

// NewIndex builds an Index from the given intervals. The input is copied and
// sorted by start; callers may pass intervals in any order. Overlapping or
// duplicate intervals are kept as-is; membership is a boolean, so overlaps
// never double-count.
func NewIndex(intervals []Interval) *Index {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	starts := make([]float64, len(sorted))
	for i, iv := range sorted {
		starts[i] = iv.Start
	}
	return &Index{intervals: sorted, starts: starts}
}

// Len returns the number of intervals in the index.
func (ix *Index) Len() int {
	return len(ix.intervals)
}

// Intervals returns the sorted intervals backing the index. The returned
// slice must not be modified.
func (ix *Index) Intervals() []Interval {
	return ix.intervals
}

// Contains reports whether t falls inside any interval. With intervals sorted
// by start, the only candidate is the interval with the largest start <= t;
// if that one does not contain t, no earlier interval can (earlier intervals
// start sooner and, in non-overlapping subtitle timing, end sooner too).
func (ix *Index) Contains(t float64) bool {
	idx := ix.insertionIndex(t) - 1
	if idx < 0 {
		return false
	}
	return ix.intervals[idx].Contains(t)
}

// insertionIndex returns the right-biased insertion point for t among the
// sorted starts: the index after the last start <= t. Equal starts land
// after the run, so Contains always probes the last of a duplicate group.
func (ix *Index) insertionIndex(t float64) int {
	lo, hi := 0, len(ix.starts)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if ix.starts[mid] <= t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
