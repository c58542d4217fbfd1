package evaluate

import (
	"math/rand"
	"testing"

	"github.com/subfast/subeval/internal/timeline"
)

func TestEvaluateAllCorrect(t *testing.T) {
	frames := []Frame{
		{Timestamp: 1.0, Predicted: true},
		{Timestamp: 5.0, Predicted: false},
		{Timestamp: 10.0, Predicted: true},
	}
	ix := timeline.NewIndex([]timeline.Interval{
		{Start: 0.0, End: 2.0},
		{Start: 9.0, End: 11.0},
	})

	m := Evaluate(frames, ix)

	if m.TruePositive != 2 || m.FalsePositive != 0 || m.TrueNegative != 1 || m.FalseNegative != 0 {
		t.Fatalf("confusion matrix = TP=%d FP=%d TN=%d FN=%d, want TP=2 FP=0 TN=1 FN=0",
			m.TruePositive, m.FalsePositive, m.TrueNegative, m.FalseNegative)
	}
	if m.SubtitleFrames != 2 || m.NonSubtitleFrames != 1 {
		t.Errorf("ground-truth tallies = %d/%d, want 2/1", m.SubtitleFrames, m.NonSubtitleFrames)
	}
	for name, r := range map[string]Ratio{
		"accuracy":  m.Accuracy(),
		"precision": m.Precision(),
		"recall":    m.Recall(),
		"f1":        m.F1(),
	} {
		v, ok := r.Value()
		if !ok || v != 1.0 {
			t.Errorf("%s = %v (defined=%v), want 1.0", name, v, ok)
		}
	}
}

func TestEvaluateFalsePositiveOnly(t *testing.T) {
	frames := []Frame{{Timestamp: 3.0, Predicted: true}}
	ix := timeline.NewIndex([]timeline.Interval{{Start: 0.0, End: 2.0}})

	m := Evaluate(frames, ix)

	if m.FalsePositive != 1 || m.EvaluatedFrames != 1 {
		t.Fatalf("FP=%d evaluated=%d, want FP=1 evaluated=1", m.FalsePositive, m.EvaluatedFrames)
	}
	v, ok := m.Precision().Value()
	if !ok || v != 0.0 {
		t.Errorf("precision = (%v, %v), want (0.0, true)", v, ok)
	}
	if m.Recall().Defined() {
		t.Error("recall defined, want undefined (TP+FN == 0)")
	}
}

func TestEvaluateEmptyFrames(t *testing.T) {
	ix := timeline.NewIndex([]timeline.Interval{{Start: 0.0, End: 2.0}})
	m := Evaluate(nil, ix)

	if m.EvaluatedFrames != 0 {
		t.Fatalf("evaluated = %d, want 0", m.EvaluatedFrames)
	}
	for name, r := range map[string]Ratio{
		"accuracy":   m.Accuracy(),
		"error rate": m.ErrorRate(),
		"precision":  m.Precision(),
		"recall":     m.Recall(),
		"f1":         m.F1(),
	} {
		if r.Defined() {
			t.Errorf("%s defined for empty input, want undefined", name)
		}
	}
}

func TestEvaluateEmptyIndex(t *testing.T) {
	frames := []Frame{
		{Timestamp: -1.0, Predicted: true},
		{Timestamp: 0.0, Predicted: false},
		{Timestamp: 100.0, Predicted: true},
	}

	for _, ix := range []*timeline.Index{nil, timeline.NewIndex(nil)} {
		m := Evaluate(frames, ix)
		if m.SubtitleFrames != 0 || m.NonSubtitleFrames != 3 {
			t.Errorf("ground-truth tallies = %d/%d, want 0/3", m.SubtitleFrames, m.NonSubtitleFrames)
		}
		if m.FalsePositive != 2 || m.TrueNegative != 1 {
			t.Errorf("FP=%d TN=%d, want FP=2 TN=1", m.FalsePositive, m.TrueNegative)
		}
	}
}

func TestEvaluateCounterIdentities(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	frames := randomFrames(rng, 1000)
	ix := randomIndex(rng, 20)

	m := Evaluate(frames, ix)

	if sum := m.TruePositive + m.TrueNegative + m.FalsePositive + m.FalseNegative; sum != m.EvaluatedFrames {
		t.Errorf("TP+TN+FP+FN = %d, want %d", sum, m.EvaluatedFrames)
	}
	if m.SubtitleFrames != m.TruePositive+m.FalseNegative {
		t.Errorf("subtitle frames = %d, want TP+FN = %d", m.SubtitleFrames, m.TruePositive+m.FalseNegative)
	}
	if m.NonSubtitleFrames != m.TrueNegative+m.FalsePositive {
		t.Errorf("non-subtitle frames = %d, want TN+FP = %d", m.NonSubtitleFrames, m.TrueNegative+m.FalsePositive)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	frames := randomFrames(rng, 500)
	ix := randomIndex(rng, 10)

	first := Evaluate(frames, ix)
	second := Evaluate(frames, ix)
	if first != second {
		t.Errorf("repeated evaluation differs: %+v vs %+v", first, second)
	}
}

func TestEvaluateParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(37))
	frames := randomFrames(rng, 10000)
	ix := randomIndex(rng, 40)

	want := Evaluate(frames, ix)
	for _, workers := range []int{1, 2, 3, 8, 64} {
		got := EvaluateParallel(frames, ix, workers)
		if got != want {
			t.Errorf("workers=%d: %+v, want %+v", workers, got, want)
		}
	}
}

func TestEvaluateParallelSmallInput(t *testing.T) {
	frames := []Frame{{Timestamp: 1.0, Predicted: true}}
	ix := timeline.NewIndex([]timeline.Interval{{Start: 0.0, End: 2.0}})

	got := EvaluateParallel(frames, ix, 8)
	want := Evaluate(frames, ix)
	if got != want {
		t.Errorf("small input parallel result %+v, want %+v", got, want)
	}
}

func TestCorrectness(t *testing.T) {
	frames := []Frame{
		{Timestamp: 1.0, Predicted: true},  // TP -> 1
		{Timestamp: 3.0, Predicted: true},  // FP -> 0
		{Timestamp: 5.0, Predicted: false}, // TN -> 1
		{Timestamp: 1.5, Predicted: false}, // FN -> 0
	}
	ix := timeline.NewIndex([]timeline.Interval{{Start: 0.0, End: 2.0}})

	got := Correctness(frames, ix)
	want := []float64{1, 0, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scores[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func randomFrames(rng *rand.Rand, n int) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = Frame{
			Timestamp: rng.Float64() * 600,
			Predicted: rng.Intn(2) == 0,
		}
	}
	return frames
}

func randomIndex(rng *rand.Rand, n int) *timeline.Index {
	intervals := make([]timeline.Interval, 0, n)
	cursor := 0.0
	for i := 0; i < n; i++ {
		cursor += rng.Float64() * 10
		start := cursor
		cursor += rng.Float64() * 10
		intervals = append(intervals, timeline.Interval{Start: start, End: cursor})
	}
	return timeline.NewIndex(intervals)
}
