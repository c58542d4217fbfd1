// Package models defines the serializable result types shared by the CLI
// commands and the reporting writers.
package models

import (
	"fmt"
	"time"

	"github.com/subfast/subeval/internal/evaluate"
	"github.com/subfast/subeval/internal/statistics"
)

// Report is the complete result of one evaluation run. It is what `run -o`
// writes and what `compare` reads back.
type Report struct {
	DetectionsPath    string                         `json:"detections_path"`
	SubtitlePath      string                         `json:"subtitle_path"`
	Timestamp         time.Time                      `json:"timestamp"`
	SubtitleIntervals int                            `json:"subtitle_intervals"`
	TotalFrames       int                            `json:"total_frames"`
	EvaluatedFrames   int                            `json:"evaluated_frames"`
	SkippedFrames     int                            `json:"skipped_frames"`
	SubtitleFrames    int                            `json:"subtitle_frames"`
	NonSubtitleFrames int                            `json:"non_subtitle_frames"`
	Confusion         Confusion                      `json:"confusion_matrix"`
	Metrics           RatioSet                       `json:"metrics"`
	AccuracyCI        *statistics.ConfidenceInterval `json:"accuracy_ci,omitempty"`
	Violations        []ThresholdViolation           `json:"threshold_violations,omitempty"`
}

// Confusion is the four-way classification of predictions.
type Confusion struct {
	TruePositive  int `json:"true_positive"`
	TrueNegative  int `json:"true_negative"`
	FalsePositive int `json:"false_positive"`
	FalseNegative int `json:"false_negative"`
}

// RatioSet holds the derived metrics. A nil pointer means the metric is
// undefined for this run (e.g. precision with no positive predictions) and
// renders as "n/a", never as zero.
type RatioSet struct {
	Accuracy  *float64 `json:"accuracy"`
	ErrorRate *float64 `json:"error_rate"`
	Precision *float64 `json:"precision"`
	Recall    *float64 `json:"recall"`
	F1        *float64 `json:"f1"`
}

// NewReport assembles a Report from an evaluation pass.
func NewReport(detectionsPath, subtitlePath string, intervals int, m evaluate.Metrics) *Report {
	return &Report{
		DetectionsPath:    detectionsPath,
		SubtitlePath:      subtitlePath,
		Timestamp:         time.Now().UTC(),
		SubtitleIntervals: intervals,
		TotalFrames:       m.EvaluatedFrames + m.SkippedFrames,
		EvaluatedFrames:   m.EvaluatedFrames,
		SkippedFrames:     m.SkippedFrames,
		SubtitleFrames:    m.SubtitleFrames,
		NonSubtitleFrames: m.NonSubtitleFrames,
		Confusion: Confusion{
			TruePositive:  m.TruePositive,
			TrueNegative:  m.TrueNegative,
			FalsePositive: m.FalsePositive,
			FalseNegative: m.FalseNegative,
		},
		Metrics: RatioSet{
			Accuracy:  ratioPtr(m.Accuracy()),
			ErrorRate: ratioPtr(m.ErrorRate()),
			Precision: ratioPtr(m.Precision()),
			Recall:    ratioPtr(m.Recall()),
			F1:        ratioPtr(m.F1()),
		},
	}
}

func ratioPtr(r evaluate.Ratio) *float64 {
	v, ok := r.Value()
	if !ok {
		return nil
	}
	return &v
}

// Thresholds holds optional minimum values for the derived metrics. A nil
// field means no requirement.
type Thresholds struct {
	MinAccuracy  *float64 `json:"min_accuracy,omitempty"`
	MinPrecision *float64 `json:"min_precision,omitempty"`
	MinRecall    *float64 `json:"min_recall,omitempty"`
	MinF1        *float64 `json:"min_f1,omitempty"`
}

// Any reports whether at least one threshold is set.
func (t Thresholds) Any() bool {
	return t.MinAccuracy != nil || t.MinPrecision != nil || t.MinRecall != nil || t.MinF1 != nil
}

// ThresholdViolation records one metric that failed its minimum. Actual is
// nil when the metric was undefined for the run.
type ThresholdViolation struct {
	Metric string   `json:"metric"`
	Min    float64  `json:"min"`
	Actual *float64 `json:"actual"`
}

func (v ThresholdViolation) String() string {
	if v.Actual == nil {
		return fmt.Sprintf("%s is undefined (minimum %.4f)", v.Metric, v.Min)
	}
	return fmt.Sprintf("%s = %.4f below minimum %.4f", v.Metric, *v.Actual, v.Min)
}

// Check compares the report's metrics against the thresholds and returns the
// violations. An undefined metric with a threshold set is a violation: there
// is no value to attest the minimum.
func (t Thresholds) Check(r *Report) []ThresholdViolation {
	var violations []ThresholdViolation
	check := func(name string, minimum *float64, actual *float64) {
		if minimum == nil {
			return
		}
		if actual == nil || *actual < *minimum {
			violations = append(violations, ThresholdViolation{Metric: name, Min: *minimum, Actual: actual})
		}
	}
	check("accuracy", t.MinAccuracy, r.Metrics.Accuracy)
	check("precision", t.MinPrecision, r.Metrics.Precision)
	check("recall", t.MinRecall, r.Metrics.Recall)
	check("f1", t.MinF1, r.Metrics.F1)
	return violations
}
