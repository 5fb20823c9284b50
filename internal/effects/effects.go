// Package effects turns an element's animation curves into the ffmpeg filter
// chain applied to its layer before it is overlaid on the plate.
package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/infographic2gif/internal/director"
)

// Overshoot margin for easings that pass their target (easeOutBack,
// easeOutElastic) so the padded box never clips a scaled layer.
const overshoot = 1.25

// LayerParams describes one layer input.
type LayerParams struct {
	ElementID int
	Curves    []director.Curve
	FPS       int
	Width     int
	Height    int
}

// Effect produces one filter for a layer, or "" when it does not apply.
type Effect interface {
	GenerateFilter(p LayerParams) string
}

// ScaleEffect scales the layer per frame, then pads it to a fixed box so the
// layer keeps a constant size and centre for the overlay.
type ScaleEffect struct{}

func (ScaleEffect) GenerateFilter(p LayerParams) string {
	if !Animates(p.Curves, director.PropScale) {
		return ""
	}
	bw, bh := ScaledBox(p)
	e := PiecewiseExpr(p.Curves, director.PropScale, "n", 1)
	return fmt.Sprintf("scale=w='min(%[1]d,max(1,iw*(%[3]s)))':h='min(%[2]d,max(1,ih*(%[3]s)))':eval=frame,"+
		"pad=w=%[1]d:h=%[2]d:x='(ow-iw)/2':y='(oh-ih)/2':color=black@0:eval=frame", bw, bh, e)
}

// RotateEffect rotates the layer around its centre on a canvas large enough
// for any angle.
type RotateEffect struct{}

func (RotateEffect) GenerateFilter(p LayerParams) string {
	if !Animates(p.Curves, director.PropRotate) {
		return ""
	}
	e := PiecewiseExpr(p.Curves, director.PropRotate, "n", 0)
	return fmt.Sprintf("rotate=a='(%s)*PI/180':c=none:ow='hypot(iw,ih)':oh='ow'", e)
}

// OpacityEffect multiplies the layer alpha per frame.
type OpacityEffect struct{}

func (OpacityEffect) GenerateFilter(p LayerParams) string {
	if !Animates(p.Curves, director.PropOpacity) {
		return ""
	}
	e := PiecewiseExpr(p.Curves, director.PropOpacity, "N", 1)
	return fmt.Sprintf("geq=r='r(X,Y)':g='g(X,Y)':b='b(X,Y)':a='alpha(X,Y)*clip(%s,0,1)'", e)
}

// ForCurves returns the effects a layer needs, in application order: scale,
// rotate, opacity. Translation is applied by the overlay, not here.
func ForCurves(curves []director.Curve) []Effect {
	var out []Effect
	if Animates(curves, director.PropScale) {
		out = append(out, ScaleEffect{})
	}
	if Animates(curves, director.PropRotate) {
		out = append(out, RotateEffect{})
	}
	if Animates(curves, director.PropOpacity) {
		out = append(out, OpacityEffect{})
	}
	return out
}

// Chain renders the full layer filter chain, starting with an RGBA
// conversion so every later stage has an alpha channel.
func Chain(p LayerParams, fx ...Effect) string {
	parts := []string{"format=rgba"}
	for _, e := range fx {
		if f := e.GenerateFilter(p); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, ",")
}

// ScaledBox is the padded size of a scaled layer.
func ScaledBox(p LayerParams) (int, int) {
	peak := Peak(p.Curves, director.PropScale, 1) * overshoot
	return int(math.Ceil(float64(p.Width) * peak)), int(math.Ceil(float64(p.Height) * peak))
}
