package evaluate

import "fmt"

// Ratio is a derived metric value that may be undefined (e.g. precision when
// no positive predictions were made). The zero value is undefined.
type Ratio struct {
	value   float64
	defined bool
}

// DefinedRatio wraps a numeric metric value.
func DefinedRatio(v float64) Ratio {
	return Ratio{value: v, defined: true}
}

// UndefinedRatio returns the explicit "not applicable" marker.
func UndefinedRatio() Ratio {
	return Ratio{}
}

// Value returns the numeric value and whether it is defined.
func (r Ratio) Value() (float64, bool) {
	return r.value, r.defined
}

// Defined reports whether the ratio has a numeric value.
func (r Ratio) Defined() bool {
	return r.defined
}

// String renders the ratio to 4 decimal places, or "n/a" when undefined.
func (r Ratio) String() string {
	if !r.defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", r.value)
}

// Metrics accumulates the confusion matrix for one evaluation pass. It is
// populated by a single Evaluate call and read-only afterwards; the derived
// ratios are computed on demand from the counters, never stored.
type Metrics struct {
	EvaluatedFrames   int `json:"evaluated_frames"`
	SkippedFrames     int `json:"skipped_frames"`
	SubtitleFrames    int `json:"subtitle_frames"`
	NonSubtitleFrames int `json:"non_subtitle_frames"`
	TruePositive      int `json:"true_positive"`
	TrueNegative      int `json:"true_negative"`
	FalsePositive     int `json:"false_positive"`
	FalseNegative     int `json:"false_negative"`
}

// record classifies one (predicted, truth) pair into the four-way confusion
// matrix and the ground-truth tallies.
func (m *Metrics) record(predicted, truth bool) {
	m.EvaluatedFrames++
	if truth {
		m.SubtitleFrames++
	} else {
		m.NonSubtitleFrames++
	}

	switch {
	case predicted && truth:
		m.TruePositive++
	case predicted && !truth:
		m.FalsePositive++
	case !predicted && truth:
		m.FalseNegative++
	default:
		m.TrueNegative++
	}
}

// add merges another accumulator field-wise. Used to combine partial results
// from a partitioned evaluation pass.
func (m *Metrics) add(o Metrics) {
	m.EvaluatedFrames += o.EvaluatedFrames
	m.SkippedFrames += o.SkippedFrames
	m.SubtitleFrames += o.SubtitleFrames
	m.NonSubtitleFrames += o.NonSubtitleFrames
	m.TruePositive += o.TruePositive
	m.TrueNegative += o.TrueNegative
	m.FalsePositive += o.FalsePositive
	m.FalseNegative += o.FalseNegative
}

// Accuracy is (TP+TN)/evaluated. Undefined when nothing was evaluated.
func (m Metrics) Accuracy() Ratio {
	if m.EvaluatedFrames == 0 {
		return UndefinedRatio()
	}
	return DefinedRatio(float64(m.TruePositive+m.TrueNegative) / float64(m.EvaluatedFrames))
}

// ErrorRate is 1 - accuracy, undefined under the same condition.
func (m Metrics) ErrorRate() Ratio {
	acc, ok := m.Accuracy().Value()
	if !ok {
		return UndefinedRatio()
	}
	return DefinedRatio(1.0 - acc)
}

// Precision is TP/(TP+FP). Undefined when no positive predictions were made.
func (m Metrics) Precision() Ratio {
	denom := m.TruePositive + m.FalsePositive
	if denom == 0 {
		return UndefinedRatio()
	}
	return DefinedRatio(float64(m.TruePositive) / float64(denom))
}

// Recall is TP/(TP+FN). Undefined when no ground-truth positives exist.
func (m Metrics) Recall() Ratio {
	denom := m.TruePositive + m.FalseNegative
	if denom == 0 {
		return UndefinedRatio()
	}
	return DefinedRatio(float64(m.TruePositive) / float64(denom))
}

// F1 is the harmonic mean of precision and recall. Undefined when either is
// undefined or when both are zero.
func (m Metrics) F1() Ratio {
	precision, pok := m.Precision().Value()
	recall, rok := m.Recall().Value()
	if !pok || !rok || precision+recall == 0 {
		return UndefinedRatio()
	}
	return DefinedRatio(2 * precision * recall / (precision + recall))
}
