package director

import "github.com/ivlev/infographic2gif/internal/analyzer"

// PlanVersion is bumped when the plan layout changes.
const PlanVersion = "1.0"

// Curve is the frame-indexed interpolation of one property of one element.
// Looped three-valued transitions are split into two curves that share
// LoopMidFrame; the consumer picks the one whose range holds the frame.
type Curve struct {
	ElementID    int      `yaml:"element_id" json:"elementId"`
	Property     Property `yaml:"property" json:"propertyName"`
	StartFrame   int      `yaml:"start_frame" json:"startFrame"`
	EndFrame     int      `yaml:"end_frame" json:"endFrame"`
	From         float64  `yaml:"from" json:"fromValue"`
	To           float64  `yaml:"to" json:"toValue"`
	Easing       string   `yaml:"easing" json:"easingId"`
	Looping      bool     `yaml:"looping" json:"isLooping"`
	LoopMidFrame *int     `yaml:"loop_mid_frame,omitempty" json:"loopMidFrame,omitempty"`
}

// Plan is everything a renderer needs: canvas, timing and curves, plus the
// elements and directives they were derived from.
type Plan struct {
	Version         string             `yaml:"version" json:"version"`
	RunID           string             `yaml:"run_id,omitempty" json:"runId,omitempty"`
	Source          string             `yaml:"source,omitempty" json:"source,omitempty"`
	Mode            string             `yaml:"mode" json:"mode"`
	Width           int                `yaml:"width" json:"width"`
	Height          int                `yaml:"height" json:"height"`
	DurationSeconds float64            `yaml:"duration_seconds" json:"durationSeconds"`
	FPS             int                `yaml:"fps" json:"fps"`
	Elements        []analyzer.Element `yaml:"elements" json:"elements"`
	Directives      []Directive        `yaml:"directives" json:"directives"`
	Curves          []Curve            `yaml:"curves" json:"curves"`
}

// TotalFrames is the number of frames the renderer produces.
func (p *Plan) TotalFrames() int {
	return int(p.DurationSeconds*float64(p.FPS) + 1e-9)
}

// CurvesFor returns the curves of one element in plan order.
func (p *Plan) CurvesFor(elementID int) []Curve {
	var out []Curve
	for _, c := range p.Curves {
		if c.ElementID == elementID {
			out = append(out, c)
		}
	}
	return out
}

// Element looks up an element by id.
func (p *Plan) Element(id int) (analyzer.Element, bool) {
	for _, el := range p.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return analyzer.Element{}, false
}
