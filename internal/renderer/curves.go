package renderer

import (
	"log/slog"
	"math"

	"github.com/ivlev/infographic2gif/internal/director"
	"github.com/ivlev/infographic2gif/internal/easing"
	applog "github.com/ivlev/infographic2gif/internal/log"
)

// FrameOf converts seconds to a frame index, rounding down.
func FrameOf(seconds float64, fps int) int {
	if seconds <= 0 || fps <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return int(math.Floor(seconds*float64(fps) + 1e-9))
}

// GenerateCurves compiles one directive into frame-indexed curves, one per
// transform property in transform order. On a looping directive a
// three-valued transition a→b→c becomes two curves split at
// floor((start+end)/2); without Loop only a→b is kept and the value settles
// at b. Static directives produce no curves. Unknown easing names resolve to
// easeOut.
func GenerateCurves(d director.Directive, fps int) []director.Curve {
	if !d.Animated() {
		return nil
	}

	id, ok := easing.Normalize(d.Easing)
	if !ok {
		applog.WithOperation(applog.WithComponent("renderer"), "curves").Debug("unknown easing, using default",
			slog.Int("element", d.ElementID), slog.String("easing", d.Easing), slog.String("default", id))
	}

	start := FrameOf(d.Window.Start, fps)
	end := max(FrameOf(d.Window.End, fps), start)

	curves := make([]director.Curve, 0, len(d.Transform))
	for _, t := range d.Transform {
		if t.LoopTo == nil || !d.Loop {
			curves = append(curves, director.Curve{
				ElementID:  d.ElementID,
				Property:   t.Property,
				StartFrame: start,
				EndFrame:   end,
				From:       t.From,
				To:         t.To,
				Easing:     id,
				Looping:    d.Loop,
			})
			continue
		}

		mid := (start + end) / 2
		curves = append(curves,
			director.Curve{
				ElementID: d.ElementID, Property: t.Property,
				StartFrame: start, EndFrame: mid,
				From: t.From, To: t.To,
				Easing: id, Looping: d.Loop, LoopMidFrame: intPtr(mid),
			},
			director.Curve{
				ElementID: d.ElementID, Property: t.Property,
				StartFrame: mid, EndFrame: end,
				From: t.To, To: *t.LoopTo,
				Easing: id, Looping: d.Loop, LoopMidFrame: intPtr(mid),
			},
		)
	}
	return curves
}

// GenerateAll concatenates the curves of every directive in directive order.
func GenerateAll(ds []director.Directive, fps int) []director.Curve {
	var out []director.Curve
	for _, d := range ds {
		out = append(out, GenerateCurves(d, fps)...)
	}
	return out
}

func intPtr(v int) *int { return &v }
