package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/subfast/subeval/internal/models"
)

var compareOutputFormat string

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <report1.json> <report2.json> [report3.json ...]",
		Short: "Compare saved evaluation reports side by side",
		Long: `Compare metrics from multiple saved evaluation reports.

Loads two or more report JSON files (written by "run -o") and prints
per-metric deltas between the first and last report.`,
		Args: cobra.MinimumNArgs(2),
		RunE: compareCommandE,
	}

	cmd.Flags().StringVarP(&compareOutputFormat, "format", "f", "table", "Output format: table or json")

	return cmd
}

// metricComparison holds one metric's values across report files. A nil
// entry means the metric was undefined in that report.
type metricComparison struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
	Delta  *float64   `json:"delta"`
}

// comparisonReport is the full comparison output.
type comparisonReport struct {
	Files           []string           `json:"files"`
	Detections      []string           `json:"detections"`
	EvaluatedFrames []int              `json:"evaluated_frames"`
	Metrics         []metricComparison `json:"metrics"`
}

func compareCommandE(_ *cobra.Command, args []string) error {
	if compareOutputFormat != "table" && compareOutputFormat != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", compareOutputFormat)
	}

	reports := make([]*models.Report, 0, len(args))
	for _, path := range args {
		r, err := loadReportFile(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		reports = append(reports, r)
	}

	comparison := buildComparisonReport(args, reports)

	if compareOutputFormat == "json" {
		return printComparisonJSON(comparison)
	}
	printComparisonTable(comparison)
	return nil
}

func loadReportFile(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func buildComparisonReport(files []string, reports []*models.Report) *comparisonReport {
	comparison := &comparisonReport{
		Files: files,
	}

	for _, r := range reports {
		comparison.Detections = append(comparison.Detections, r.DetectionsPath)
		comparison.EvaluatedFrames = append(comparison.EvaluatedFrames, r.EvaluatedFrames)
	}

	metrics := []struct {
		name string
		pick func(*models.Report) *float64
	}{
		{"accuracy", func(r *models.Report) *float64 { return r.Metrics.Accuracy }},
		{"error_rate", func(r *models.Report) *float64 { return r.Metrics.ErrorRate }},
		{"precision", func(r *models.Report) *float64 { return r.Metrics.Precision }},
		{"recall", func(r *models.Report) *float64 { return r.Metrics.Recall }},
		{"f1", func(r *models.Report) *float64 { return r.Metrics.F1 }},
	}

	n := len(reports)
	for _, m := range metrics {
		mc := metricComparison{Name: m.name}
		for _, r := range reports {
			mc.Values = append(mc.Values, m.pick(r))
		}
		first, last := mc.Values[0], mc.Values[n-1]
		if first != nil && last != nil {
			delta := *last - *first
			mc.Delta = &delta
		}
		comparison.Metrics = append(comparison.Metrics, mc)
	}

	return comparison
}

func printComparisonTable(r *comparisonReport) {
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println(" COMPARISON REPORT")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println()

	for i, f := range r.Files {
		name := runewidth.Truncate(f, 46, "...")
		fmt.Printf("  [%d] %s  (%d frames)\n", i+1, name, r.EvaluatedFrames[i])
	}
	fmt.Println()

	fmt.Println(strings.Repeat("-", 70))
	fmt.Println(" METRICS")
	fmt.Println(strings.Repeat("-", 70))

	fmt.Printf("  %-12s", "Metric")
	for i := range r.Files {
		fmt.Printf("  [%d]      ", i+1)
	}
	fmt.Printf("  Delta\n")

	for _, mc := range r.Metrics {
		fmt.Printf("  %-12s", mc.Name)
		for _, v := range mc.Values {
			fmt.Printf("  %-9s", fmtRatio(v))
		}
		if mc.Delta == nil {
			fmt.Printf("  n/a\n")
			continue
		}
		deltaIcon := " "
		if *mc.Delta > 0 {
			deltaIcon = "↑"
		} else if *mc.Delta < 0 {
			deltaIcon = "↓"
		}
		fmt.Printf("  %s%+.4f\n", deltaIcon, *mc.Delta)
	}
	fmt.Println()
}

func printComparisonJSON(r *comparisonReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comparison report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
