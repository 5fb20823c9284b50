package config

import (
	"errors"
	"fmt"
	"strings"

	applog "github.com/ivlev/infographic2gif/internal/log"
)

// Planning modes.
const (
	ModeAuto   = "auto"
	ModeCustom = "custom"
)

const (
	DefaultTotalDuration = 10.0
	DefaultFPS           = 30
	DefaultTargetGIFMB   = 5.0
)

var (
	// ErrMissingInstructions rejects custom mode without instruction text.
	ErrMissingInstructions = errors.New("custom mode requires instruction text")
	ErrInvalidMode         = errors.New("invalid planning mode")
	ErrInvalidRatio        = errors.New("invalid aspect ratio")
	ErrInvalidDetector     = errors.New("invalid detector variant")
)

// SupportedRatios lists the aspect ratio presets accepted by Validate.
var SupportedRatios = []string{"1:1", "16:9", "9:16", "4:5"}

// PlanOptions is everything the planning core reads.
type PlanOptions struct {
	TotalDuration float64 `yaml:"total_duration"`
	FPS           int     `yaml:"fps"`
	Mode          string  `yaml:"mode"`
	Instructions  string  `yaml:"instructions"`
}

// DefaultPlanOptions returns a 10 second, 30 fps auto plan.
func DefaultPlanOptions() PlanOptions {
	return PlanOptions{TotalDuration: DefaultTotalDuration, FPS: DefaultFPS, Mode: ModeAuto}
}

// Normalized fills zero or negative numbers with defaults and lower-cases the mode.
func (o PlanOptions) Normalized() PlanOptions {
	if o.TotalDuration <= 0 {
		o.TotalDuration = DefaultTotalDuration
	}
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	o.Mode = strings.ToLower(strings.TrimSpace(o.Mode))
	if o.Mode == "" {
		o.Mode = ModeAuto
	}
	return o
}

// Validate reports the configuration errors the core refuses to guess around.
func (o PlanOptions) Validate() error {
	n := o.Normalized()
	switch n.Mode {
	case ModeAuto:
		return nil
	case ModeCustom:
		if strings.TrimSpace(n.Instructions) == "" {
			return ErrMissingInstructions
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, o.Mode)
	}
}

// Config is the application configuration assembled from defaults, an optional
// YAML file, .env, I2G_* variables and finally CLI flags.
type Config struct {
	InputPath   string  `yaml:"input"`
	OutputDir   string  `yaml:"output_dir"`
	Ratio       string  `yaml:"ratio"`
	Detector    string  `yaml:"detector"`
	OCRLanguage string  `yaml:"ocr_language"`
	DPI         int     `yaml:"dpi"`
	TargetGIFMB float64 `yaml:"target_gif_mb"`
	KeepVideo   bool    `yaml:"keep_video"`
	PlanOnly    bool    `yaml:"plan_only"`
	Workers     int     `yaml:"workers"`
	PreviewAddr string  `yaml:"preview_addr"`
	HistoryPath string  `yaml:"history_path"`

	Plan PlanOptions    `yaml:"plan"`
	Log  applog.Options `yaml:"log"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		InputPath:   "input/images",
		OutputDir:   "output",
		Ratio:       "1:1",
		Detector:    "ocr",
		OCRLanguage: "eng",
		DPI:         150,
		TargetGIFMB: DefaultTargetGIFMB,
		PreviewAddr: "127.0.0.1:8787",
		HistoryPath: "output/history.sqlite",
		Plan:        DefaultPlanOptions(),
		Log:         applog.Options{Level: "info", Format: "text"},
	}
}

// Validate checks the options that would otherwise fail deep in the pipeline.
func (c *Config) Validate() error {
	if !IsSupportedRatio(c.Ratio) {
		return fmt.Errorf("%w: %q (supported: %s)", ErrInvalidRatio, c.Ratio, strings.Join(SupportedRatios, ", "))
	}
	switch c.Detector {
	case "ocr", "contrast", "":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDetector, c.Detector)
	}
	if c.TargetGIFMB < 0 {
		return fmt.Errorf("target_gif_mb must be >= 0, got %v", c.TargetGIFMB)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return c.Plan.Validate()
}

// IsSupportedRatio reports whether r is one of SupportedRatios.
func IsSupportedRatio(r string) bool {
	for _, s := range SupportedRatios {
		if s == r {
			return true
		}
	}
	return false
}
