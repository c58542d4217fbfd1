package detection

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/subfast/subeval/internal/evaluate"
)

// LoadCSV reads a detection CSV file. The header row must name a
// "timestamp_seconds" (or "timestamp") column and a "has_subtitle" column.
// Rows with an unparsable or non-finite timestamp are counted as skipped.
func LoadCSV(path string) ([]evaluate.Frame, int, error) {
	data, err := readMaybeGzip(path)
	if err != nil {
		return nil, 0, err
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("detection: parse csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("detection: csv %s is empty (no header row)", path)
	}

	tsCol, tsAliasCol, predCol := -1, -1, -1
	for i, h := range records[0] {
		switch strings.TrimSpace(h) {
		case "timestamp_seconds":
			tsCol = i
		case "timestamp":
			tsAliasCol = i
		case "has_subtitle":
			predCol = i
		}
	}
	if tsCol < 0 {
		tsCol = tsAliasCol
	}
	if tsCol < 0 || predCol < 0 {
		return nil, 0, fmt.Errorf("detection: csv %s: header must contain timestamp_seconds and has_subtitle columns", path)
	}

	frames := make([]evaluate.Frame, 0, len(records)-1)
	skipped := 0
	for i, record := range records[1:] {
		if len(record) <= tsCol || len(record) <= predCol {
			skipped++
			continue
		}
		ts, err := strconv.ParseFloat(strings.TrimSpace(record[tsCol]), 64)
		if err != nil || math.IsNaN(ts) || math.IsInf(ts, 0) {
			slog.Debug("skipping malformed detection row", "path", path, "row", i+2)
			skipped++
			continue
		}
		frames = append(frames, evaluate.Frame{
			Timestamp: ts,
			Predicted: truthyCSV(record[predCol]),
		})
	}

	sortFrames(frames)
	return frames, skipped, nil
}

func truthyCSV(s string) bool {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0
	}
	return s != ""
}
