package renderer

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/infographic2gif/internal/director"
)

// RenderFrame rasterises one frame of the plan in memory: the plate with
// every animated layer transformed by its state at frame. It mirrors the
// ffmpeg graph closely enough for posters and previews.
func RenderFrame(canvas image.Image, plan *director.Plan, frame int) *image.RGBA {
	animated := AnimatedElements(plan)
	dst := BuildPlate(canvas, animated)
	bounds := canvas.Bounds()

	for _, el := range animated {
		st := StateAt(plan.CurvesFor(el.ID), frame)
		if st.Opacity <= 0 || math.Abs(st.Scale) < 1e-6 {
			continue
		}
		sr := el.Position.Image().Intersect(dst.Bounds()).Add(bounds.Min)
		if sr.Empty() {
			continue
		}

		rad := st.Rotate * math.Pi / 180
		sin, cos := math.Sincos(rad)
		a, b := st.Scale*cos, -st.Scale*sin
		d, e := st.Scale*sin, st.Scale*cos

		csx := float64(sr.Min.X+sr.Max.X) / 2
		csy := float64(sr.Min.Y+sr.Max.Y) / 2
		cdx := csx - float64(bounds.Min.X) + st.TranslateX
		cdy := csy - float64(bounds.Min.Y) + st.TranslateY

		m := f64.Aff3{
			a, b, cdx - (a*csx + b*csy),
			d, e, cdy - (d*csx + e*csy),
		}
		opts := &xdraw.Options{SrcMask: image.NewUniform(color.Alpha16{A: uint16(min(st.Opacity, 1) * 0xffff)})}
		xdraw.ApproxBiLinear.Transform(dst, m, canvas, sr, xdraw.Over, opts)
	}
	return dst
}
