// Package config defines the configuration for processing a capture.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/edaniels/golog"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/ioquatix/transform-flow/alignment"
	"github.com/ioquatix/transform-flow/features"
	"github.com/ioquatix/transform-flow/motion"
)

// Model names.
const (
	ModelBasic  = "basic"
	ModelHybrid = "hybrid"
)

// Detector names.
const (
	DetectorLaplacian     = "laplacian"
	DetectorColorDistance = "color-distance"
)

// Strategy names.
const (
	StrategyPriority = "priority"
	StrategyWindow   = "window"
)

// Config describes how a capture is processed.
type Config struct {
	ConfigFilePath string `json:"-" yaml:"-"`

	// Capture is the directory holding the sensor log and frames.
	Capture   string          `json:"capture" yaml:"capture"`
	Model     string          `json:"model,omitempty" yaml:"model,omitempty"`
	Scan      ScanConfig      `json:"scan" yaml:"scan"`
	Alignment AlignmentConfig `json:"alignment" yaml:"alignment"`
	Hybrid    HybridConfig    `json:"hybrid" yaml:"hybrid"`
}

// ScanConfig configures feature scanning.
type ScanConfig struct {
	LineSpacing    float64 `json:"line_spacing,omitempty" yaml:"line_spacing,omitempty"`
	PixelsPerBin   float64 `json:"pixels_per_bin,omitempty" yaml:"pixels_per_bin,omitempty"`
	Detector       string  `json:"detector,omitempty" yaml:"detector,omitempty"`
	ColorThreshold int     `json:"color_threshold,omitempty" yaml:"color_threshold,omitempty"`
	MinVariance    float64 `json:"min_variance,omitempty" yaml:"min_variance,omitempty"`
}

// AlignmentConfig configures table alignment.
type AlignmentConfig struct {
	Strategy      string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	MinBinSamples int    `json:"min_bin_samples,omitempty" yaml:"min_bin_samples,omitempty"`
	Window        int    `json:"window,omitempty" yaml:"window,omitempty"`
}

// HybridConfig configures the hybrid motion model.
type HybridConfig struct {
	CompassBlend   float64 `json:"compass_blend,omitempty" yaml:"compass_blend,omitempty"`
	ImageBlend     float64 `json:"image_blend,omitempty" yaml:"image_blend,omitempty"`
	MinConfidence  int     `json:"min_confidence,omitempty" yaml:"min_confidence,omitempty"`
	ReanchorPixels float64 `json:"reanchor_pixels,omitempty" yaml:"reanchor_pixels,omitempty"`
}

// Schema returns the JSON schema of a config file.
func Schema() ([]byte, error) {
	return json.MarshalIndent(jsonschema.Reflect(&Config{}), "", "  ")
}

// Ensure fills in defaults and validates the config.
func (c *Config) Ensure() error {
	if c.Model == "" {
		c.Model = ModelHybrid
	}
	if c.Scan.Detector == "" {
		c.Scan.Detector = DetectorLaplacian
	}
	if c.Alignment.Strategy == "" {
		c.Alignment.Strategy = StrategyPriority
	}
	return c.Validate("")
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.Capture == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "capture")
	}
	switch c.Model {
	case ModelBasic, ModelHybrid:
	default:
		return utils.NewConfigValidationError(join(path, "model"), errors.Errorf("unknown model %q", c.Model))
	}
	if err := c.Scan.Validate(join(path, "scan")); err != nil {
		return err
	}
	if err := c.Alignment.Validate(join(path, "alignment")); err != nil {
		return err
	}
	return c.Hybrid.Validate(join(path, "hybrid"))
}

// Validate ensures all parts of the config are valid.
func (c *ScanConfig) Validate(path string) error {
	switch c.Detector {
	case "", DetectorLaplacian, DetectorColorDistance:
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown detector %q", c.Detector))
	}
	if c.LineSpacing < 0 || c.PixelsPerBin < 0 || c.ColorThreshold < 0 || c.MinVariance < 0 {
		return utils.NewConfigValidationError(path, errors.New("values must not be negative"))
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (c *AlignmentConfig) Validate(path string) error {
	switch c.Strategy {
	case "", StrategyPriority, StrategyWindow:
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown strategy %q", c.Strategy))
	}
	if c.MinBinSamples < 0 || c.Window < 0 {
		return utils.NewConfigValidationError(path, errors.New("values must not be negative"))
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (c *HybridConfig) Validate(path string) error {
	for name, v := range map[string]float64{"compass_blend": c.CompassBlend, "image_blend": c.ImageBlend} {
		if v < 0 || v > 1 {
			return utils.NewConfigValidationError(join(path, name), fmt.Errorf("%v is not within [0, 1]", v))
		}
	}
	if c.MinConfidence < 0 || c.ReanchorPixels < 0 {
		return utils.NewConfigValidationError(path, errors.New("values must not be negative"))
	}
	return nil
}

// ScanOptions converts the scan section.
func (c *Config) ScanOptions() features.ScanOptions {
	opts := features.ScanOptions{
		LineSpacing:  c.Scan.LineSpacing,
		PixelsPerBin: c.Scan.PixelsPerBin,
	}
	switch c.Scan.Detector {
	case DetectorColorDistance:
		opts.Detector = features.ColorDistance{Threshold: c.Scan.ColorThreshold}
	default:
		opts.Detector = features.LaplacianZeroCrossing{MinVariance: c.Scan.MinVariance}
	}
	return opts
}

// AlignmentOptions converts the alignment section.
func (c *Config) AlignmentOptions(logger golog.Logger) []alignment.Option {
	opts := []alignment.Option{alignment.WithLogger(logger)}
	if c.Alignment.Strategy == StrategyWindow {
		opts = append(opts, alignment.WithStrategy(alignment.Window))
	} else {
		opts = append(opts, alignment.WithStrategy(alignment.Priority))
	}
	if c.Alignment.MinBinSamples > 0 {
		opts = append(opts, alignment.WithMinBinSamples(c.Alignment.MinBinSamples))
	}
	if c.Alignment.Window > 0 {
		opts = append(opts, alignment.WithWindow(c.Alignment.Window))
	}
	return opts
}

// NewModel builds the configured motion model.
func (c *Config) NewModel(logger golog.Logger) (motion.Model, error) {
	switch c.Model {
	case ModelBasic:
		return motion.NewBasicSensorModel(c.Hybrid.CompassBlend, logger), nil
	case ModelHybrid, "":
		return motion.NewHybridModel(motion.HybridOptions{
			CompassBlend:   c.Hybrid.CompassBlend,
			MinConfidence:  c.Hybrid.MinConfidence,
			ImageBlend:     c.Hybrid.ImageBlend,
			ReanchorPixels: c.Hybrid.ReanchorPixels,
			Scan:           c.ScanOptions(),
			Alignment:      c.AlignmentOptions(logger),
		}, logger), nil
	default:
		return nil, errors.Errorf("unknown model %q", c.Model)
	}
}
