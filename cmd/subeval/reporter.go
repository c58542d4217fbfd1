package main

import (
	"fmt"
	"strings"

	"github.com/subfast/subeval/internal/models"
)

// fmtRatio renders a possibly-undefined metric for the text report.
func fmtRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}

// FormatTextReport renders a Report as the human-readable console report.
func FormatTextReport(r *models.Report) string {
	var b strings.Builder

	b.WriteString("Subtitle Detection Evaluation\n")
	b.WriteString("==============================\n")
	fmt.Fprintf(&b, "Frames in input          : %d\n", r.TotalFrames)
	fmt.Fprintf(&b, "Evaluated frames         : %d\n", r.EvaluatedFrames)
	fmt.Fprintf(&b, "Skipped frames (no timestamp): %d\n", r.SkippedFrames)
	fmt.Fprintf(&b, "Ground-truth subtitle frames  : %d\n", r.SubtitleFrames)
	fmt.Fprintf(&b, "Ground-truth non-subtitle frames: %d\n", r.NonSubtitleFrames)
	b.WriteString("\n")

	b.WriteString("Confusion Matrix\n")
	b.WriteString("----------------\n")
	fmt.Fprintf(&b, "True Positive  : %d\n", r.Confusion.TruePositive)
	fmt.Fprintf(&b, "True Negative  : %d\n", r.Confusion.TrueNegative)
	fmt.Fprintf(&b, "False Positive : %d\n", r.Confusion.FalsePositive)
	fmt.Fprintf(&b, "False Negative : %d\n", r.Confusion.FalseNegative)
	b.WriteString("\n")

	b.WriteString("Metrics\n")
	b.WriteString("-------\n")
	fmt.Fprintf(&b, "Accuracy        : %s\n", fmtRatio(r.Metrics.Accuracy))
	fmt.Fprintf(&b, "Error rate      : %s\n", fmtRatio(r.Metrics.ErrorRate))
	fmt.Fprintf(&b, "Precision       : %s\n", fmtRatio(r.Metrics.Precision))
	fmt.Fprintf(&b, "Recall (coverage): %s\n", fmtRatio(r.Metrics.Recall))
	fmt.Fprintf(&b, "F1 score        : %s\n", fmtRatio(r.Metrics.F1))

	if r.AccuracyCI != nil {
		ci := r.AccuracyCI
		b.WriteString("\n")
		fmt.Fprintf(&b, "Accuracy %.0f%% CI  : [%.4f, %.4f] (%d resamples)\n",
			ci.ConfidenceLevel*100, ci.Lower, ci.Upper, ci.NumBootstraps)
	}

	return b.String()
}
