package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subfast/subeval/internal/detection"
	"github.com/subfast/subeval/internal/evaluate"
	"github.com/subfast/subeval/internal/models"
	"github.com/subfast/subeval/internal/projectconfig"
	"github.com/subfast/subeval/internal/reporting"
	"github.com/subfast/subeval/internal/statistics"
	"github.com/subfast/subeval/internal/subtitle"
	"github.com/subfast/subeval/internal/timeline"
)

var (
	runFormat     string
	runOutputPath string
	runJUnitPath  string
	runParallel   bool
	runWorkers    int
	runCI         bool
	runCISeed     int64
	minAccuracy   float64
	minPrecision  float64
	minRecall     float64
	minF1         float64
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <detections.json[.gz]|detections.csv> <subtitles.srt>",
		Short: "Evaluate a detection dump against a subtitle file",
		Long: `Evaluate frame-level subtitle detection output against ground truth.

The detection file is a JSON array of per-frame entries (optionally gzipped)
or a CSV with timestamp_seconds and has_subtitle columns. The subtitle file
provides the ground-truth intervals (SRT or WebVTT cue timing).`,
		Args: cobra.ExactArgs(2),
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runFormat, "format", "f", "", "Output format: text or json (default: text)")
	cmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "Output JSON file for the full report")
	cmd.Flags().StringVar(&runJUnitPath, "junit", "", "Write JUnit XML results to this path")
	cmd.Flags().BoolVar(&runParallel, "parallel", false, "Partition the evaluation pass across workers")
	cmd.Flags().IntVar(&runWorkers, "workers", 0, "Number of concurrent workers (default: 4, requires --parallel)")
	cmd.Flags().BoolVar(&runCI, "ci", false, "Compute a bootstrap confidence interval for accuracy")
	cmd.Flags().Int64Var(&runCISeed, "ci-seed", -1, "Seed for the bootstrap resampler (negative: non-deterministic)")
	cmd.Flags().Float64Var(&minAccuracy, "min-accuracy", -1, "Fail when accuracy is below this value")
	cmd.Flags().Float64Var(&minPrecision, "min-precision", -1, "Fail when precision is below this value")
	cmd.Flags().Float64Var(&minRecall, "min-recall", -1, "Fail when recall is below this value")
	cmd.Flags().Float64Var(&minF1, "min-f1", -1, "Fail when F1 is below this value")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	detectionsPath, subtitlePath := args[0], args[1]

	cfg, err := projectconfig.Load(".")
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	if cfg.Output.Format != "text" && cfg.Output.Format != "json" {
		return fmt.Errorf("unsupported format %q: must be text or json", cfg.Output.Format)
	}

	frames, skipped, err := detection.Load(detectionsPath)
	if err != nil {
		return err
	}
	slog.Debug("loaded detection frames", "path", detectionsPath, "frames", len(frames), "skipped", skipped)

	intervals, err := subtitle.Load(subtitlePath)
	if err != nil {
		return err
	}
	slog.Debug("loaded subtitle intervals", "path", subtitlePath, "intervals", len(intervals))

	index := timeline.NewIndex(intervals)

	var m evaluate.Metrics
	if *cfg.Evaluation.Parallel {
		m = evaluate.EvaluateParallel(frames, index, cfg.Evaluation.Workers)
	} else {
		m = evaluate.Evaluate(frames, index)
	}
	m.SkippedFrames = skipped

	report := models.NewReport(detectionsPath, subtitlePath, index.Len(), m)

	if *cfg.Bootstrap.Enabled {
		scores := evaluate.Correctness(frames, index)
		ci := statistics.BootstrapCIWithSeed(scores, cfg.Bootstrap.ConfidenceLevel, *cfg.Bootstrap.Seed)
		report.AccuracyCI = &ci
	}

	thresholds := cfg.Thresholds.Thresholds()
	report.Violations = thresholds.Check(report)

	if cfg.Output.Format == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(FormatTextReport(report))
	}

	if runOutputPath != "" {
		if err := writeReportJSON(report, runOutputPath); err != nil {
			return err
		}
		fmt.Printf("\nReport written to: %s\n", runOutputPath)
	}

	if cfg.Output.JUnit != "" {
		if err := reporting.WriteJUnitXML(report, thresholds, cfg.Output.JUnit); err != nil {
			return fmt.Errorf("writing JUnit XML: %w", err)
		}
		fmt.Printf("JUnit results written to: %s\n", cfg.Output.JUnit)
	}

	if len(report.Violations) > 0 {
		lines := make([]string, 0, len(report.Violations))
		for _, v := range report.Violations {
			lines = append(lines, v.String())
		}
		return &EvalFailureError{Message: "threshold check failed:\n  " + strings.Join(lines, "\n  ")}
	}
	return nil
}

// applyRunFlags overlays explicitly-set CLI flags onto the project config.
func applyRunFlags(cmd *cobra.Command, cfg *projectconfig.Config) {
	if runFormat != "" {
		cfg.Output.Format = runFormat
	}
	if runJUnitPath != "" {
		cfg.Output.JUnit = runJUnitPath
	}
	if runParallel {
		cfg.Evaluation.Parallel = &runParallel
	}
	if runWorkers > 0 {
		cfg.Evaluation.Workers = runWorkers
	}
	if runCI {
		cfg.Bootstrap.Enabled = &runCI
	}
	if cmd.Flags().Changed("ci-seed") {
		cfg.Bootstrap.Seed = &runCISeed
	}

	setThreshold := func(flag string, value *float64, target **float64) {
		if cmd.Flags().Changed(flag) && *value >= 0 {
			*target = value
		}
	}
	setThreshold("min-accuracy", &minAccuracy, &cfg.Thresholds.MinAccuracy)
	setThreshold("min-precision", &minPrecision, &cfg.Thresholds.MinPrecision)
	setThreshold("min-recall", &minRecall, &cfg.Thresholds.MinRecall)
	setThreshold("min-f1", &minF1, &cfg.Thresholds.MinF1)
}

func writeReportJSON(report *models.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}
	return nil
}
