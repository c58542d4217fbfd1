// Package projectconfig provides the Config struct and loader for
// .subeval.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/subfast/subeval/internal/models"
)

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultFormat = "text"

	DefaultWorkers = 4

	DefaultConfidenceLevel = 0.95
	DefaultCISeed          = int64(-1)
)

// OutputConfig holds report output settings.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"`
	JUnit  string `yaml:"junit,omitempty"`
}

// EvaluationConfig holds evaluation pass settings.
type EvaluationConfig struct {
	Parallel *bool `yaml:"parallel,omitempty"`
	Workers  int   `yaml:"workers,omitempty"`
}

// BootstrapConfig holds accuracy confidence interval settings.
type BootstrapConfig struct {
	Enabled         *bool   `yaml:"enabled,omitempty"`
	ConfidenceLevel float64 `yaml:"confidence_level,omitempty"`
	Seed            *int64  `yaml:"seed,omitempty"`
}

// ThresholdsConfig holds optional metric minimums that fail the run.
type ThresholdsConfig struct {
	MinAccuracy  *float64 `yaml:"min_accuracy,omitempty"`
	MinPrecision *float64 `yaml:"min_precision,omitempty"`
	MinRecall    *float64 `yaml:"min_recall,omitempty"`
	MinF1        *float64 `yaml:"min_f1,omitempty"`
}

// Thresholds converts the config section to the models type.
func (t ThresholdsConfig) Thresholds() models.Thresholds {
	return models.Thresholds{
		MinAccuracy:  t.MinAccuracy,
		MinPrecision: t.MinPrecision,
		MinRecall:    t.MinRecall,
		MinF1:        t.MinF1,
	}
}

// Config is the top-level configuration loaded from .subeval.yaml.
type Config struct {
	Output     OutputConfig     `yaml:"output,omitempty"`
	Evaluation EvaluationConfig `yaml:"evaluation,omitempty"`
	Bootstrap  BootstrapConfig  `yaml:"bootstrap,omitempty"`
	Thresholds ThresholdsConfig `yaml:"thresholds,omitempty"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	seed := DefaultCISeed
	return &Config{
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		Evaluation: EvaluationConfig{
			Parallel: boolPtr(false),
			Workers:  DefaultWorkers,
		},
		Bootstrap: BootstrapConfig{
			Enabled:         boolPtr(false),
			ConfidenceLevel: DefaultConfidenceLevel,
			Seed:            &seed,
		},
	}
}

// Load finds .subeval.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*Config, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading .subeval.yaml: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .subeval.yaml: %w", err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .subeval.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found; real I/O errors are
// returned as-is.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".subeval.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	if src.Output.Format != "" {
		dst.Output.Format = src.Output.Format
	}
	if src.Output.JUnit != "" {
		dst.Output.JUnit = src.Output.JUnit
	}

	if src.Evaluation.Parallel != nil {
		dst.Evaluation.Parallel = src.Evaluation.Parallel
	}
	if src.Evaluation.Workers > 0 {
		dst.Evaluation.Workers = src.Evaluation.Workers
	}

	if src.Bootstrap.Enabled != nil {
		dst.Bootstrap.Enabled = src.Bootstrap.Enabled
	}
	if src.Bootstrap.ConfidenceLevel > 0 {
		dst.Bootstrap.ConfidenceLevel = src.Bootstrap.ConfidenceLevel
	}
	if src.Bootstrap.Seed != nil {
		dst.Bootstrap.Seed = src.Bootstrap.Seed
	}

	if src.Thresholds.MinAccuracy != nil {
		dst.Thresholds.MinAccuracy = src.Thresholds.MinAccuracy
	}
	if src.Thresholds.MinPrecision != nil {
		dst.Thresholds.MinPrecision = src.Thresholds.MinPrecision
	}
	if src.Thresholds.MinRecall != nil {
		dst.Thresholds.MinRecall = src.Thresholds.MinRecall
	}
	if src.Thresholds.MinF1 != nil {
		dst.Thresholds.MinF1 = src.Thresholds.MinF1
	}
}

func boolPtr(b bool) *bool {
	return &b
}
