package renderer

import (
	"sort"

	"github.com/ivlev/infographic2gif/internal/director"
	"github.com/ivlev/infographic2gif/internal/easing"
)

// ElementState is the transform of one element at one frame.
type ElementState struct {
	Opacity    float64
	Scale      float64
	TranslateX float64
	TranslateY float64
	Rotate     float64 // degrees
}

// RestState is the state of an element with no curves.
var RestState = ElementState{Opacity: 1, Scale: 1}

// Evaluate returns the curve value at frame: From up to StartFrame, To from
// EndFrame on, eased in between.
func Evaluate(c director.Curve, frame int) float64 {
	if frame >= c.EndFrame {
		return c.To
	}
	if frame <= c.StartFrame {
		return c.From
	}
	p := float64(frame-c.StartFrame) / float64(c.EndFrame-c.StartFrame)
	return lerp(c.From, c.To, easing.Apply(c.Easing, p))
}

// ValueAt evaluates the curves of one property at frame. The governing curve
// is the last one that has started; before the first curve its From value
// holds. def is returned when no curve animates prop.
func ValueAt(curves []director.Curve, prop director.Property, frame int, def float64) float64 {
	var own []director.Curve
	for _, c := range curves {
		if c.Property == prop {
			own = append(own, c)
		}
	}
	if len(own) == 0 {
		return def
	}
	sort.SliceStable(own, func(i, j int) bool { return own[i].StartFrame < own[j].StartFrame })

	cur := own[0]
	for _, c := range own[1:] {
		if c.StartFrame > frame {
			break
		}
		cur = c
	}
	return Evaluate(cur, frame)
}

// StateAt evaluates every property of one element's curves at frame.
func StateAt(curves []director.Curve, frame int) ElementState {
	return ElementState{
		Opacity:    ValueAt(curves, director.PropOpacity, frame, RestState.Opacity),
		Scale:      ValueAt(curves, director.PropScale, frame, RestState.Scale),
		TranslateX: ValueAt(curves, director.PropTranslateX, frame, RestState.TranslateX),
		TranslateY: ValueAt(curves, director.PropTranslateY, frame, RestState.TranslateY),
		Rotate:     ValueAt(curves, director.PropRotate, frame, RestState.Rotate),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
