package renderer

import (
	"fmt"
	"strings"

	"github.com/ivlev/infographic2gif/internal/analyzer"
	"github.com/ivlev/infographic2gif/internal/director"
	"github.com/ivlev/infographic2gif/internal/effects"
)

// OutputLabel is the filter graph pad carrying the composed video.
const OutputLabel = "vout"

// Layer is one animated element cut out of the canvas.
type Layer struct {
	ElementID int
	Path      string
	Rect      analyzer.Rect
}

// Layers are the ffmpeg inputs of a render: the plate is input 0 and each
// element layer follows in order.
type Layers struct {
	Plate    string
	Elements []Layer
}

// Inputs lists every input path in ffmpeg input order.
func (l Layers) Inputs() []string {
	out := make([]string, 0, len(l.Elements)+1)
	out = append(out, l.Plate)
	for _, el := range l.Elements {
		out = append(out, el.Path)
	}
	return out
}

// BuildFilterGraph composes the plate and every layer into one
// filter_complex string ending in [vout].
func BuildFilterGraph(plan *director.Plan, layers Layers) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[0:v]format=rgba,scale=%d:%d[b0]", plan.Width, plan.Height)

	for i, layer := range layers.Elements {
		in := i + 1
		curves := plan.CurvesFor(layer.ElementID)
		p := effects.LayerParams{
			ElementID: layer.ElementID,
			Curves:    curves,
			FPS:       plan.FPS,
			Width:     layer.Rect.Width,
			Height:    layer.Rect.Height,
		}
		fmt.Fprintf(&b, ";[%d:v]%s[l%d]", in, effects.Chain(p, effects.ForCurves(curves)...), in)
		fmt.Fprintf(&b, ";[b%d][l%d]overlay=x='%s':y='%s':format=auto:eval=frame[b%d]",
			i, in, overlayExpr(layer.Rect.X, layer.Rect.Width, curves, director.PropTranslateX, "w"),
			overlayExpr(layer.Rect.Y, layer.Rect.Height, curves, director.PropTranslateY, "h"), in)
	}

	fmt.Fprintf(&b, ";[b%d]format=yuv420p[%s]", len(layers.Elements), OutputLabel)
	return b.String()
}

// overlayExpr keeps the layer centred on its source rectangle whatever size
// the effects chain produced, then adds the translation curve.
func overlayExpr(origin, size int, curves []director.Curve, prop director.Property, dim string) string {
	center := float64(origin) + float64(size)/2
	base := fmt.Sprintf("%s-%s/2", effects.Num(center), dim)
	if !effects.Animates(curves, prop) {
		return base
	}
	return fmt.Sprintf("%s+(%s)", base, effects.PiecewiseExpr(curves, prop, "n", 0))
}
