// Package evaluate classifies frame-level subtitle predictions against
// ground-truth intervals and accumulates confusion-matrix metrics.
package evaluate

import (
	"golang.org/x/sync/errgroup"

	"github.com/subfast/subeval/internal/timeline"
)

// Frame is one timestamped prediction sample from the detector.
type Frame struct {
	Timestamp float64 `json:"timestamp_seconds"`
	Predicted bool    `json:"has_subtitle"`
}

// minParallelFrames is the input size below which a partitioned pass is not
// worth the goroutine overhead.
const minParallelFrames = 4096

// Evaluate classifies each frame against the ground-truth index and returns
// the accumulated metrics. Frames need not be sorted; each one is classified
// independently and the result is invariant to order. A nil or empty index
// means every frame is ground-truth negative; the index lookup is skipped
// entirely in that case.
func Evaluate(frames []Frame, index *timeline.Index) Metrics {
	var m Metrics
	empty := index == nil || index.Len() == 0
	for _, f := range frames {
		truth := false
		if !empty {
			truth = index.Contains(f.Timestamp)
		}
		m.record(f.Predicted, truth)
	}
	return m
}

// EvaluateParallel partitions the frames across workers, evaluates the
// partitions concurrently, and merges the partial accumulators by field-wise
// addition. The result is identical to Evaluate: classification is per-frame
// and the counters commute. Small inputs fall back to the sequential pass.
func EvaluateParallel(frames []Frame, index *timeline.Index, workers int) Metrics {
	if workers <= 1 || len(frames) < minParallelFrames {
		return Evaluate(frames, index)
	}
	if workers > len(frames) {
		workers = len(frames)
	}

	partials := make([]Metrics, workers)
	chunk := (len(frames) + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(frames))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			partials[w] = Evaluate(frames[lo:hi], index)
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	var m Metrics
	for _, p := range partials {
		m.add(p)
	}
	return m
}

// Correctness returns one score per frame: 1 when the prediction agrees with
// ground truth, 0 otherwise. The scores feed the bootstrap confidence
// interval over accuracy.
func Correctness(frames []Frame, index *timeline.Index) []float64 {
	scores := make([]float64, len(frames))
	empty := index == nil || index.Len() == 0
	for i, f := range frames {
		truth := false
		if !empty {
			truth = index.Contains(f.Timestamp)
		}
		if f.Predicted == truth {
			scores[i] = 1.0
		}
	}
	return scores
}
