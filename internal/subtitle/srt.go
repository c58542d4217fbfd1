// Package subtitle extracts ground-truth timing intervals from timed-text
// subtitle files.
package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/subfast/subeval/internal/timeline"
)

// timeRangeSep separates the start and end timestamps of a cue timing line
// in both SRT and WebVTT.
const timeRangeSep = "-->"

// Load reads a subtitle file and returns its cue intervals sorted by start.
// Only cue timing lines are interpreted; indices, cue text, and blank lines
// are ignored. Reversed start/end pairs are swapped. A malformed timestamp on
// a timing line is a hard error naming the line.
func Load(path string) ([]timeline.Interval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("subtitle: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var intervals []timeline.Interval
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, timeRangeSep) {
			continue
		}

		startText, endText, _ := strings.Cut(line, timeRangeSep)
		startText = strings.TrimSpace(startText)
		// WebVTT allows cue settings after the end timestamp.
		endText = firstField(strings.TrimSpace(endText))

		start, err := parseTimestamp(startText)
		if err != nil {
			return nil, fmt.Errorf("subtitle: %s:%d: invalid timing line %q: %w", path, lineNo, line, err)
		}
		end, err := parseTimestamp(endText)
		if err != nil {
			return nil, fmt.Errorf("subtitle: %s:%d: invalid timing line %q: %w", path, lineNo, line, err)
		}
		if end < start {
			start, end = end, start
		}
		intervals = append(intervals, timeline.Interval{Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("subtitle: read %s: %w", path, err)
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})
	return intervals, nil
}

func firstField(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return s
}

// parseTimestamp converts an SRT "HH:MM:SS,mmm" or WebVTT "HH:MM:SS.mmm" /
// "MM:SS.mmm" timestamp to seconds.
func parseTimestamp(s string) (float64, error) {
	parts := strings.Split(s, ":")
	var hoursText, minutesText, secondsText string
	switch len(parts) {
	case 3:
		hoursText, minutesText, secondsText = parts[0], parts[1], parts[2]
	case 2:
		hoursText, minutesText, secondsText = "0", parts[0], parts[1]
	default:
		return 0, fmt.Errorf("timestamp %q: expected HH:MM:SS or MM:SS form", s)
	}

	// Millisecond separator is "," in SRT and "." in WebVTT.
	secondsText = strings.Replace(secondsText, ",", ".", 1)
	secField, millisText, hasMillis := strings.Cut(secondsText, ".")

	hours, err := strconv.Atoi(hoursText)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: bad hours: %w", s, err)
	}
	minutes, err := strconv.Atoi(minutesText)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: bad minutes: %w", s, err)
	}
	seconds, err := strconv.Atoi(secField)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: bad seconds: %w", s, err)
	}

	millis := 0
	if hasMillis {
		millis, err = strconv.Atoi(millisText)
		if err != nil {
			return 0, fmt.Errorf("timestamp %q: bad milliseconds: %w", s, err)
		}
	}

	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000.0, nil
}
