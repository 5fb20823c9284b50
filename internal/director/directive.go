package director

import "github.com/ivlev/infographic2gif/internal/analyzer"

// AnimationKind names an entrance or emphasis animation.
type AnimationKind string

const (
	KindFadeIn       AnimationKind = "fade-in"
	KindFadeInScale  AnimationKind = "fade-in-scale"
	KindZoomIn       AnimationKind = "zoom-in"
	KindPopIn        AnimationKind = "pop-in"
	KindSlideInTop   AnimationKind = "slide-in-top"
	KindSlideInBot   AnimationKind = "slide-in-bottom"
	KindSlideInLeft  AnimationKind = "slide-in-left"
	KindSlideInRight AnimationKind = "slide-in-right"
	KindPulse        AnimationKind = "pulse"
	KindBounceIn     AnimationKind = "bounce-in"
	KindRotateIn     AnimationKind = "rotate-in"
	KindStatic       AnimationKind = "static"
)

// Property is an animatable element property.
type Property string

const (
	PropOpacity    Property = "opacity"
	PropScale      Property = "scale"
	PropTranslateX Property = "translateX"
	PropTranslateY Property = "translateY"
	PropRotate     Property = "rotate"
)

// Transition moves one property from From to To. A non-nil LoopTo makes it a
// three-valued transition From→To→LoopTo.
type Transition struct {
	Property Property `yaml:"property" json:"property"`
	From     float64  `yaml:"from" json:"from"`
	To       float64  `yaml:"to" json:"to"`
	LoopTo   *float64 `yaml:"loop_to,omitempty" json:"loopTo,omitempty"`
}

// TimingWindow is a [Start, End] span in seconds.
type TimingWindow struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
}

// Duration returns End-Start.
func (w TimingWindow) Duration() float64 { return w.End - w.Start }

// Directive is the compiled animation assignment for one element.
type Directive struct {
	ElementID    int           `yaml:"element_id" json:"elementId"`
	Kind         AnimationKind `yaml:"kind" json:"animationKind"`
	Transform    []Transition  `yaml:"transform" json:"transform"`
	Easing       string        `yaml:"easing" json:"easingId"`
	Window       TimingWindow  `yaml:"window" json:"timingWindow"`
	Loop         bool          `yaml:"loop" json:"loop"`
	StaggerDelay float64       `yaml:"stagger_delay,omitempty" json:"staggerDelay,omitempty"`
	Speed        float64       `yaml:"speed,omitempty" json:"speed,omitempty"`
	Static       bool          `yaml:"static" json:"static"`
	AutoFilled   bool          `yaml:"auto_filled,omitempty" json:"autoFilled,omitempty"`
}

// Animated reports whether the curve generator should produce curves.
func (d Directive) Animated() bool {
	return !d.Static && len(d.Transform) > 0
}

// Preset is the template a directive is built from.
type Preset struct {
	Kind      AnimationKind
	Transform []Transition
	Easing    string
	Loop      bool
}

func loopTo(v float64) *float64 { return &v }

var presets = map[AnimationKind]Preset{
	KindFadeIn: {Easing: "easeOut", Transform: []Transition{
		{Property: PropOpacity, From: 0, To: 1},
	}},
	KindFadeInScale: {Easing: "easeOut", Transform: []Transition{
		{Property: PropOpacity, From: 0, To: 1},
		{Property: PropScale, From: 0.95, To: 1},
	}},
	KindZoomIn: {Easing: "easeOutBack", Transform: []Transition{
		{Property: PropScale, From: 0, To: 1},
		{Property: PropOpacity, From: 0, To: 1},
	}},
	KindPopIn: {Easing: "easeOutBack", Transform: []Transition{
		{Property: PropScale, From: 0, To: 1.1, LoopTo: loopTo(1)},
	}},
	KindSlideInTop: {Easing: "easeOut", Transform: []Transition{
		{Property: PropTranslateY, From: -50, To: 0},
		{Property: PropOpacity, From: 0, To: 1},
	}},
	KindSlideInBot: {Easing: "easeOut", Transform: []Transition{
		{Property: PropTranslateY, From: 50, To: 0},
		{Property: PropOpacity, From: 0, To: 1},
	}},
	KindSlideInLeft: {Easing: "easeOut", Transform: []Transition{
		{Property: PropTranslateX, From: -50, To: 0},
		{Property: PropOpacity, From: 0, To: 1},
	}},
	KindSlideInRight: {Easing: "easeOut", Transform: []Transition{
		{Property: PropTranslateX, From: 50, To: 0},
		{Property: PropOpacity, From: 0, To: 1},
	}},
	KindPulse: {Easing: "easeInOut", Loop: true, Transform: []Transition{
		{Property: PropScale, From: 1, To: 1.05, LoopTo: loopTo(1)},
	}},
	KindBounceIn: {Easing: "easeOutElastic", Transform: []Transition{
		{Property: PropScale, From: 0, To: 1},
	}},
	KindRotateIn: {Easing: "easeOut", Transform: []Transition{
		{Property: PropRotate, From: -180, To: 0},
		{Property: PropOpacity, From: 0, To: 1},
	}},
	KindStatic: {Easing: "linear"},
}

// rolePresets drives auto mode.
var rolePresets = map[analyzer.Role]AnimationKind{
	analyzer.RoleTitle:      KindFadeInScale,
	analyzer.RoleStat:       KindZoomIn,
	analyzer.RoleCTA:        KindPulse,
	analyzer.RoleBody:       KindFadeIn,
	analyzer.RoleBackground: KindStatic,
}

// PresetFor returns a deep copy of the preset for kind. Unknown kinds get fade-in.
func PresetFor(kind AnimationKind) Preset {
	p, ok := presets[kind]
	if !ok {
		kind, p = KindFadeIn, presets[KindFadeIn]
	}
	p.Kind = kind
	p.Transform = cloneTransform(p.Transform)
	return p
}

// KindForRole maps a semantic role to its auto-mode animation.
func KindForRole(r analyzer.Role) AnimationKind {
	if k, ok := rolePresets[r]; ok {
		return k
	}
	return KindFadeIn
}

func cloneTransform(ts []Transition) []Transition {
	if len(ts) == 0 {
		return nil
	}
	out := make([]Transition, len(ts))
	for i, t := range ts {
		out[i] = t
		if t.LoopTo != nil {
			out[i].LoopTo = loopTo(*t.LoopTo)
		}
	}
	return out
}

func newDirective(elementID int, kind AnimationKind, w TimingWindow) Directive {
	p := PresetFor(kind)
	return Directive{
		ElementID: elementID,
		Kind:      p.Kind,
		Transform: p.Transform,
		Easing:    p.Easing,
		Window:    w,
		Loop:      p.Loop,
		Static:    p.Kind == KindStatic,
	}
}
