package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds a Config from defaults, the YAML file at path (optional), a .env
// file in the working directory (optional) and I2G_* environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	cfg.Plan = cfg.Plan.Normalized()
	return cfg, nil
}

func applyEnv(c *Config) {
	c.InputPath = envOr("I2G_INPUT", c.InputPath)
	c.OutputDir = envOr("I2G_OUTPUT_DIR", c.OutputDir)
	c.Ratio = envOr("I2G_RATIO", c.Ratio)
	c.Detector = envOr("I2G_DETECTOR", c.Detector)
	c.OCRLanguage = envOr("I2G_OCR_LANG", c.OCRLanguage)
	c.DPI = envInt("I2G_DPI", c.DPI)
	c.TargetGIFMB = envFloat("I2G_TARGET_GIF_MB", c.TargetGIFMB)
	c.KeepVideo = envBool("I2G_KEEP_VIDEO", c.KeepVideo)
	c.Workers = envInt("I2G_WORKERS", c.Workers)
	c.PreviewAddr = envOr("I2G_PREVIEW_ADDR", c.PreviewAddr)
	c.HistoryPath = envOr("I2G_HISTORY", c.HistoryPath)

	c.Plan.TotalDuration = envFloat("I2G_DURATION", c.Plan.TotalDuration)
	c.Plan.FPS = envInt("I2G_FPS", c.Plan.FPS)
	c.Plan.Mode = envOr("I2G_MODE", c.Plan.Mode)
	c.Plan.Instructions = envOr("I2G_INSTRUCTIONS", c.Plan.Instructions)

	c.Log.Level = envOr("I2G_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("I2G_LOG_FORMAT", c.Log.Format)
	c.Log.File = envOr("I2G_LOG_FILE", c.Log.File)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
