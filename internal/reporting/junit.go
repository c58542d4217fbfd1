// Package reporting writes evaluation results in machine-readable formats
// for CI consumption.
package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/subfast/subeval/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluation run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one metric check.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a metric that missed its threshold.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks an undefined metric with no threshold attached.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a Report plus its threshold set to JUnit XML: one
// testcase per derived metric. A metric fails when it violates its threshold,
// is skipped when it is undefined and unconstrained, and passes otherwise.
func ConvertToJUnit(report *models.Report, thresholds models.Thresholds) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      "subtitle-detection-evaluation",
		Timestamp: report.Timestamp.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "detections", Value: report.DetectionsPath},
			{Name: "subtitles", Value: report.SubtitlePath},
			{Name: "evaluated_frames", Value: fmt.Sprintf("%d", report.EvaluatedFrames)},
			{Name: "skipped_frames", Value: fmt.Sprintf("%d", report.SkippedFrames)},
			{Name: "true_positive", Value: fmt.Sprintf("%d", report.Confusion.TruePositive)},
			{Name: "true_negative", Value: fmt.Sprintf("%d", report.Confusion.TrueNegative)},
			{Name: "false_positive", Value: fmt.Sprintf("%d", report.Confusion.FalsePositive)},
			{Name: "false_negative", Value: fmt.Sprintf("%d", report.Confusion.FalseNegative)},
		},
	}

	checks := []struct {
		name    string
		actual  *float64
		minimum *float64
	}{
		{"accuracy", report.Metrics.Accuracy, thresholds.MinAccuracy},
		{"error_rate", report.Metrics.ErrorRate, nil},
		{"precision", report.Metrics.Precision, thresholds.MinPrecision},
		{"recall", report.Metrics.Recall, thresholds.MinRecall},
		{"f1", report.Metrics.F1, thresholds.MinF1},
	}

	for _, c := range checks {
		tc := JUnitTestCase{
			Name:      c.name,
			Classname: "subeval.metrics",
		}
		switch {
		case c.minimum != nil && c.actual == nil:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s is undefined (minimum %.4f)", c.name, *c.minimum),
				Type:    "ThresholdFailure",
			}
			suite.Failures++
		case c.minimum != nil && *c.actual < *c.minimum:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s = %.4f below minimum %.4f", c.name, *c.actual, *c.minimum),
				Type:    "ThresholdFailure",
				Body:    fmt.Sprintf("actual=%.6f minimum=%.6f", *c.actual, *c.minimum),
			}
			suite.Failures++
		case c.actual == nil:
			tc.Skipped = &JUnitSkipped{Message: c.name + " is undefined for this run"}
			suite.Skipped++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}
	suite.Tests = len(suite.TestCases)

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		TestSuites: []JUnitTestSuite{suite},
	}
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(report *models.Report, thresholds models.Thresholds, path string) error {
	suites := ConvertToJUnit(report, thresholds)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
