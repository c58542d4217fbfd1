package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFileValid(t *testing.T) {
	path := writeFile(t, "frames.json", `[
		{"timestamp_seconds": 1.5, "has_subtitle": true, "frame_index": 12, "max_score": 0.8},
		{"timestamp": 2.0, "has_subtitle": false}
	]`)

	errs, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateFileEmptyArray(t *testing.T) {
	path := writeFile(t, "frames.json", `[]`)
	errs, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateFileViolations(t *testing.T) {
	path := writeFile(t, "frames.json", `[
		{"timestamp_seconds": "late", "has_subtitle": true},
		{"has_subtitle": true},
		{"timestamp_seconds": 1.0, "has_subtitle": "yes"}
	]`)

	errs, err := ValidateFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestValidateFileNonArray(t *testing.T) {
	path := writeFile(t, "frames.json", `{"timestamp_seconds": 1.0}`)
	errs, err := ValidateFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestValidateFileSyntaxError(t *testing.T) {
	path := writeFile(t, "frames.json", `[`)
	_, err := ValidateFile(path)
	require.Error(t, err)
}

func TestValidateFileGzip(t *testing.T) {
	path := writeGzipFile(t, "frames.json.gz",
		`[{"timestamp_seconds": 1.0, "has_subtitle": true}]`)
	errs, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Empty(t, errs)
}
