// Package detection loads frame-level subtitle detection output for
// evaluation: the JSON (optionally gzipped) or CSV dumps produced by the
// detection pipeline.
package detection

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/klauspost/compress/gzip"

	"github.com/subfast/subeval/internal/evaluate"
)

// rawFrame is the tolerated shape of one per-frame entry. The pipeline's
// evaluation dump uses "timestamp_seconds"; its raw frame dump uses
// "timestamp". Either key is accepted.
type rawFrame struct {
	TimestampSeconds *float64 `mapstructure:"timestamp_seconds"`
	Timestamp        *float64 `mapstructure:"timestamp"`
	HasSubtitle      any      `mapstructure:"has_subtitle"`
}

// Load reads a detection file and returns the valid frames sorted by
// timestamp plus the number of skipped entries. Files ending in .csv are
// parsed as CSV, everything else as a JSON array; a .gz suffix is
// decompressed transparently.
func Load(path string) ([]evaluate.Frame, int, error) {
	if strings.HasSuffix(strings.TrimSuffix(path, ".gz"), ".csv") {
		return LoadCSV(path)
	}
	return LoadJSON(path)
}

// LoadJSON reads a detection JSON file: a top-level array of per-frame
// objects. Entries that are not objects, or whose timestamp is missing,
// non-numeric, or non-finite, are counted as skipped rather than failing the
// run. A non-array top level is a hard error. The predicted flag follows the
// pipeline's loose convention: any truthy has_subtitle value counts as a
// positive prediction.
func LoadJSON(path string) ([]evaluate.Frame, int, error) {
	data, err := readMaybeGzip(path)
	if err != nil {
		return nil, 0, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("detection: parse %s: %w", path, err)
	}
	entries, ok := doc.([]any)
	if !ok {
		return nil, 0, fmt.Errorf("detection: %s: top-level JSON must be an array of per-frame entries", path)
	}

	frames := make([]evaluate.Frame, 0, len(entries))
	skipped := 0
	for i, entry := range entries {
		frame, ok := decodeEntry(entry)
		if !ok {
			slog.Debug("skipping malformed detection entry", "path", path, "index", i)
			skipped++
			continue
		}
		frames = append(frames, frame)
	}

	sortFrames(frames)
	return frames, skipped, nil
}

// decodeEntry converts one JSON array element into a Frame. It returns false
// for anything that is not an object with a finite numeric timestamp.
func decodeEntry(entry any) (evaluate.Frame, bool) {
	if _, ok := entry.(map[string]any); !ok {
		return evaluate.Frame{}, false
	}

	var raw rawFrame
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &raw})
	if err != nil {
		return evaluate.Frame{}, false
	}
	// A decode error means a field had the wrong type (e.g. a string
	// timestamp); the entry is skipped, not fatal.
	if err := dec.Decode(entry); err != nil {
		return evaluate.Frame{}, false
	}

	ts := raw.TimestampSeconds
	if ts == nil {
		ts = raw.Timestamp
	}
	if ts == nil || math.IsNaN(*ts) || math.IsInf(*ts, 0) {
		return evaluate.Frame{}, false
	}

	return evaluate.Frame{Timestamp: *ts, Predicted: truthy(raw.HasSubtitle)}, true
}

// truthy mirrors the permissive boolean coercion of the original dump
// consumers: absent, false, zero, and empty values are negative predictions.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

func readMaybeGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("detection: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("detection: gunzip %s: %w", path, err)
		}
		defer gz.Close() //nolint:errcheck
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("detection: read %s: %w", path, err)
	}
	return data, nil
}

// sortFrames orders frames by timestamp for reproducible reports. The
// evaluation itself is order-invariant.
func sortFrames(frames []evaluate.Frame) {
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].Timestamp < frames[j].Timestamp
	})
}
