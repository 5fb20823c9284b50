package effects

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ivlev/infographic2gif/internal/director"
	"github.com/ivlev/infographic2gif/internal/easing"
)

// Num formats a float for an ffmpeg expression without exponent notation.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

// CurveExpr renders one curve as an expression over the frame variable v.
// It holds From up to StartFrame and To from EndFrame on.
func CurveExpr(c director.Curve, v string) string {
	from, to := Num(c.From), Num(c.To)
	if c.EndFrame <= c.StartFrame {
		return fmt.Sprintf("if(gte(%s,%d),%s,%s)", v, c.EndFrame, to, from)
	}
	p := fmt.Sprintf("((%s-%d)/%d)", v, c.StartFrame, c.EndFrame-c.StartFrame)
	return fmt.Sprintf("if(gte(%[1]s,%[2]d),%[3]s,if(lte(%[1]s,%[4]d),%[5]s,%[5]s+(%[6]s)*%[7]s))",
		v, c.EndFrame, to, c.StartFrame, from, Num(c.To-c.From), easing.Expr(c.Easing, p))
}

// PiecewiseExpr joins every curve animating prop into one expression. Each
// curve governs from its StartFrame until the next one starts; before the
// first curve its From value holds. def is used when prop has no curves.
func PiecewiseExpr(curves []director.Curve, prop director.Property, v string, def float64) string {
	own := propertyCurves(curves, prop)
	if len(own) == 0 {
		return Num(def)
	}

	expr := CurveExpr(own[len(own)-1], v)
	for i := len(own) - 2; i >= 0; i-- {
		expr = fmt.Sprintf("if(lt(%s,%d),%s,%s)", v, own[i+1].StartFrame, CurveExpr(own[i], v), expr)
	}
	return expr
}

// Animates reports whether any curve drives prop.
func Animates(curves []director.Curve, prop director.Property) bool {
	for _, c := range curves {
		if c.Property == prop {
			return true
		}
	}
	return false
}

// Peak returns the largest absolute value prop reaches at a curve endpoint,
// or def when prop is not animated.
func Peak(curves []director.Curve, prop director.Property, def float64) float64 {
	peak := def
	for _, c := range propertyCurves(curves, prop) {
		peak = max(peak, abs(c.From), abs(c.To))
	}
	return peak
}

func propertyCurves(curves []director.Curve, prop director.Property) []director.Curve {
	var own []director.Curve
	for _, c := range curves {
		if c.Property == prop {
			own = append(own, c)
		}
	}
	sort.SliceStable(own, func(i, j int) bool { return own[i].StartFrame < own[j].StartFrame })
	return own
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
