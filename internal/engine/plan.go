package engine

import (
	"github.com/ivlev/infographic2gif/internal/analyzer"
	"github.com/ivlev/infographic2gif/internal/config"
	"github.com/ivlev/infographic2gif/internal/director"
	"github.com/ivlev/infographic2gif/internal/renderer"
)

// BuildPlan runs the planning core on already detected elements: classify,
// schedule or parse, compile, then generate curves. It performs no IO and
// returns the same plan for the same input. The only error is custom mode
// without instructions.
func BuildPlan(elements []analyzer.Element, meta analyzer.ImageMeta, opts config.PlanOptions) (*director.Plan, error) {
	classified := analyzer.ClassifyElements(elements, meta)

	d := director.NewDirector(opts)
	directives, err := d.Direct(classified)
	if err != nil {
		return nil, err
	}

	return &director.Plan{
		Version:         director.PlanVersion,
		Mode:            d.Options.Mode,
		Width:           meta.Width,
		Height:          meta.Height,
		DurationSeconds: d.Options.TotalDuration,
		FPS:             d.Options.FPS,
		Elements:        classified,
		Directives:      directives,
		Curves:          renderer.GenerateAll(directives, d.Options.FPS),
	}, nil
}
