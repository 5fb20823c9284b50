// Package adapter fits an infographic onto a social-media canvas and moves
// its detected elements along with it.
package adapter

import (
	"fmt"
	"math"

	"github.com/ivlev/infographic2gif/internal/config"
)

// AspectRatio is a target canvas preset.
type AspectRatio struct {
	Name      string
	Label     string
	Width     int
	Height    int
	Platforms []string
}

// Ratio is width over height.
func (a AspectRatio) Ratio() float64 {
	return float64(a.Width) / float64(a.Height)
}

var presets = []AspectRatio{
	{Name: "1:1", Label: "Square", Width: 1080, Height: 1080, Platforms: []string{"Instagram", "Facebook", "LinkedIn"}},
	{Name: "16:9", Label: "Landscape", Width: 1920, Height: 1080, Platforms: []string{"YouTube", "Twitter", "LinkedIn"}},
	{Name: "9:16", Label: "Vertical", Width: 1080, Height: 1920, Platforms: []string{"Instagram Stories", "TikTok", "YouTube Shorts"}},
	{Name: "4:5", Label: "Portrait", Width: 1080, Height: 1350, Platforms: []string{"Instagram", "Facebook"}},
}

// Presets returns the supported targets in a fixed order.
func Presets() []AspectRatio {
	out := make([]AspectRatio, len(presets))
	copy(out, presets)
	return out
}

// Lookup finds a preset by name.
func Lookup(name string) (AspectRatio, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return AspectRatio{}, fmt.Errorf("%w: %q", config.ErrInvalidRatio, name)
}

// Mismatch is the relative difference between a source and a target ratio.
func Mismatch(width, height int, target AspectRatio) float64 {
	if width <= 0 || height <= 0 {
		return math.Inf(1)
	}
	src := float64(width) / float64(height)
	return math.Abs(src-target.Ratio()) / target.Ratio()
}

// RecommendRatio picks the preset closest to the source shape.
func RecommendRatio(width, height int) AspectRatio {
	best := presets[0]
	bestDiff := math.Inf(1)
	for _, p := range presets {
		if d := Mismatch(width, height, p); d < bestDiff {
			best, bestDiff = p, d
		}
	}
	return best
}

// Describe renders "1:1 Square (1080x1080)" for console output.
func (a AspectRatio) Describe() string {
	return fmt.Sprintf("%s %s (%dx%d)", a.Name, a.Label, a.Width, a.Height)
}
