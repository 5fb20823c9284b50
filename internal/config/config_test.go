package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPlanOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    PlanOptions
		wantErr error
	}{
		{"auto without text", PlanOptions{Mode: ModeAuto}, nil},
		{"empty mode means auto", PlanOptions{}, nil},
		{"custom with text", PlanOptions{Mode: ModeCustom, Instructions: "fade in element 1"}, nil},
		{"custom empty", PlanOptions{Mode: ModeCustom}, ErrMissingInstructions},
		{"custom whitespace", PlanOptions{Mode: "Custom", Instructions: "  \n"}, ErrMissingInstructions},
		{"unknown mode", PlanOptions{Mode: "random"}, ErrInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizedDefaults(t *testing.T) {
	n := PlanOptions{TotalDuration: -3, FPS: 0, Mode: " AUTO "}.Normalized()
	if n.TotalDuration != DefaultTotalDuration || n.FPS != DefaultFPS || n.Mode != ModeAuto {
		t.Errorf("unexpected normalization: %+v", n)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Ratio = "3:2"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidRatio) {
		t.Errorf("expected ErrInvalidRatio, got %v", err)
	}

	cfg = Defaults()
	cfg.Detector = "ai"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidDetector) {
		t.Errorf("expected ErrInvalidDetector, got %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := []byte("ratio: \"9:16\"\nplan:\n  fps: 24\n  mode: custom\n  instructions: zoom in element 2\n")
	if err := os.WriteFile(path, yml, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("I2G_DURATION", "6")
	t.Setenv("I2G_DETECTOR", "contrast")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ratio != "9:16" || cfg.Plan.FPS != 24 || cfg.Plan.Mode != ModeCustom {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Plan.TotalDuration != 6 || cfg.Detector != "contrast" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.OCRLanguage != "eng" {
		t.Errorf("defaults lost: %q", cfg.OCRLanguage)
	}
}
