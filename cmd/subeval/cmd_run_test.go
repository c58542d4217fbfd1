package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subfast/subeval/internal/models"
)

func resetRunGlobals() {
	runFormat = ""
	runOutputPath = ""
	runJUnitPath = ""
	runParallel = false
	runWorkers = 0
	runCI = false
	runCISeed = -1
	minAccuracy = -1
	minPrecision = -1
	minRecall = -1
	minF1 = -1
}

// writeFixtures writes a detection JSON and an SRT file whose evaluation
// yields TP=2, TN=1, FP=0, FN=0.
func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	detections := filepath.Join(dir, "frames.json")
	require.NoError(t, os.WriteFile(detections, []byte(`[
		{"timestamp_seconds": 1.0, "has_subtitle": true},
		{"timestamp_seconds": 5.0, "has_subtitle": false},
		{"timestamp_seconds": 10.0, "has_subtitle": true}
	]`), 0o644))

	subtitles := filepath.Join(dir, "subs.srt")
	require.NoError(t, os.WriteFile(subtitles, []byte(`1
00:00:00,000 --> 00:00:02,000
First

2
00:00:09,000 --> 00:00:11,000
Second
`), 0o644))

	return detections, subtitles
}

func executeCommand(t *testing.T, args ...string) error {
	t.Helper()
	resetRunGlobals()
	cmd := newRootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRunCommandWritesReport(t *testing.T) {
	detections, subtitles := writeFixtures(t)
	outPath := filepath.Join(t.TempDir(), "report.json")

	err := executeCommand(t, "run", detections, subtitles, "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var report models.Report
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, 3, report.EvaluatedFrames)
	assert.Equal(t, 0, report.SkippedFrames)
	assert.Equal(t, 2, report.SubtitleIntervals)
	assert.Equal(t, models.Confusion{TruePositive: 2, TrueNegative: 1}, report.Confusion)
	require.NotNil(t, report.Metrics.Accuracy)
	assert.Equal(t, 1.0, *report.Metrics.Accuracy)
	require.NotNil(t, report.Metrics.F1)
	assert.Equal(t, 1.0, *report.Metrics.F1)
	assert.Empty(t, report.Violations)
}

func TestRunCommandParallelMatchesSequential(t *testing.T) {
	detections, subtitles := writeFixtures(t)
	seqPath := filepath.Join(t.TempDir(), "seq.json")
	parPath := filepath.Join(t.TempDir(), "par.json")

	require.NoError(t, executeCommand(t, "run", detections, subtitles, "-o", seqPath))
	require.NoError(t, executeCommand(t, "run", detections, subtitles, "-o", parPath, "--parallel", "--workers", "3"))

	var seq, par models.Report
	seqData, err := os.ReadFile(seqPath)
	require.NoError(t, err)
	parData, err := os.ReadFile(parPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(seqData, &seq))
	require.NoError(t, json.Unmarshal(parData, &par))

	assert.Equal(t, seq.Confusion, par.Confusion)
	assert.Equal(t, seq.Metrics, par.Metrics)
}

func TestRunCommandThresholdFailure(t *testing.T) {
	dir := t.TempDir()
	detections := filepath.Join(dir, "frames.json")
	require.NoError(t, os.WriteFile(detections,
		[]byte(`[{"timestamp_seconds": 3.0, "has_subtitle": true}]`), 0o644))
	subtitles := filepath.Join(dir, "subs.srt")
	require.NoError(t, os.WriteFile(subtitles,
		[]byte("1\n00:00:00,000 --> 00:00:02,000\nHello\n"), 0o644))

	err := executeCommand(t, "run", detections, subtitles, "--min-accuracy", "0.9")
	require.Error(t, err)

	var evalErr *EvalFailureError
	require.True(t, errors.As(err, &evalErr))
	assert.Contains(t, evalErr.Message, "accuracy")
}

func TestRunCommandJUnitOutput(t *testing.T) {
	detections, subtitles := writeFixtures(t)
	junitPath := filepath.Join(t.TempDir(), "results.xml")

	err := executeCommand(t, "run", detections, subtitles, "--junit", junitPath)
	require.NoError(t, err)

	data, err := os.ReadFile(junitPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<testsuites")
	assert.Contains(t, string(data), `name="accuracy"`)
}

func TestRunCommandCIOutput(t *testing.T) {
	detections, subtitles := writeFixtures(t)
	outPath := filepath.Join(t.TempDir(), "report.json")

	err := executeCommand(t, "run", detections, subtitles, "-o", outPath, "--ci", "--ci-seed", "42")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var report models.Report
	require.NoError(t, json.Unmarshal(data, &report))

	require.NotNil(t, report.AccuracyCI)
	assert.Equal(t, 1.0, report.AccuracyCI.Mean)
	assert.Equal(t, 0.95, report.AccuracyCI.ConfidenceLevel)
}

func TestRunCommandRejectsUnknownFormat(t *testing.T) {
	detections, subtitles := writeFixtures(t)
	err := executeCommand(t, "run", detections, subtitles, "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRunCommandMissingDetectionFile(t *testing.T) {
	_, subtitles := writeFixtures(t)
	err := executeCommand(t, "run", filepath.Join(t.TempDir(), "missing.json"), subtitles)
	require.Error(t, err)

	var evalErr *EvalFailureError
	assert.False(t, errors.As(err, &evalErr), "I/O errors must not map to the eval-failure exit code")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid,
		[]byte(`[{"timestamp_seconds": 1.0, "has_subtitle": true}]`), 0o644))
	require.NoError(t, executeCommand(t, "validate", valid))

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid,
		[]byte(`[{"has_subtitle": true}]`), 0o644))
	err := executeCommand(t, "validate", invalid)
	require.Error(t, err)
	var evalErr *EvalFailureError
	assert.True(t, errors.As(err, &evalErr))
}
