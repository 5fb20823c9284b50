// Package easing holds the fixed easing table shared by curve evaluation and
// the ffmpeg expression builder. Every function maps progress 0..1 to eased
// progress with f(0)=0 and f(1)=1.
package easing

import (
	"fmt"
	"math"
	"strings"
)

// Canonical easing ids.
const (
	Linear         = "linear"
	EaseIn         = "easeIn"
	EaseOut        = "easeOut"
	EaseInOut      = "easeInOut"
	EaseOutBack    = "easeOutBack"
	EaseOutElastic = "easeOutElastic"

	// Default replaces unknown names.
	Default = EaseOut
)

const (
	backC1    = 1.70158
	backC3    = backC1 + 1
	elasticC4 = 2 * math.Pi / 3
)

type entry struct {
	id   string
	fn   func(float64) float64
	expr func(p string) string
}

var table = map[string]entry{
	"linear": {Linear, func(t float64) float64 { return t }, func(p string) string { return p }},
	"easein": {EaseIn, func(t float64) float64 { return t * t * t }, func(p string) string {
		return fmt.Sprintf("pow(%s,3)", p)
	}},
	"easeout": {EaseOut, func(t float64) float64 { return 1 - math.Pow(1-t, 3) }, func(p string) string {
		return fmt.Sprintf("(1-pow(1-%s,3))", p)
	}},
	"easeinout": {EaseInOut, easeInOutCubic, func(p string) string {
		return fmt.Sprintf("if(lt(%[1]s,0.5),4*pow(%[1]s,3),1-pow(2-2*%[1]s,3)/2)", p)
	}},
	"easeoutback": {EaseOutBack, easeOutBack, func(p string) string {
		return fmt.Sprintf("(1+%[2]g*pow(%[1]s-1,3)+%[3]g*pow(%[1]s-1,2))", p, backC3, backC1)
	}},
	"easeoutelastic": {EaseOutElastic, easeOutElastic, func(p string) string {
		return fmt.Sprintf("if(lte(%[1]s,0),0,if(gte(%[1]s,1),1,pow(2,-10*%[1]s)*sin((%[1]s*10-0.75)*%[2]g)+1))", p, elasticC4)
	}},
}

func key(name string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}

func lookup(name string) (entry, bool) {
	e, ok := table[key(name)]
	if !ok {
		return table[strings.ToLower(Default)], false
	}
	return e, true
}

// Normalize returns the canonical id for name ("ease-out", "EASE_OUT" and
// "easeOut" are the same). Unknown names resolve to easeOut; ok reports
// whether the name was recognised.
func Normalize(name string) (id string, ok bool) {
	e, ok := lookup(name)
	return e.id, ok
}

// Apply eases progress t, clamping it to [0, 1] first.
func Apply(name string, t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	e, _ := lookup(name)
	return e.fn(t)
}

// Expr returns an ffmpeg expression easing the progress expression p, which
// must already be clipped to [0, 1].
func Expr(name, p string) string {
	e, _ := lookup(name)
	return e.expr(p)
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func easeOutBack(t float64) float64 {
	return 1 + backC3*math.Pow(t-1, 3) + backC1*math.Pow(t-1, 2)
}

func easeOutElastic(t float64) float64 {
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*elasticC4) + 1
}
