package director

import (
	"math"

	"github.com/ivlev/infographic2gif/internal/analyzer"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

// els builds classified elements with ids 1..N and the given roles.
func els(roles ...analyzer.Role) []analyzer.Element {
	out := make([]analyzer.Element, len(roles))
	for i, r := range roles {
		kind := analyzer.KindText
		if r == analyzer.RoleBackground {
			kind = analyzer.KindBackground
		}
		out[i] = analyzer.Element{
			ID:         i + 1,
			Kind:       kind,
			Role:       r,
			Position:   analyzer.Rect{X: 10, Y: 100 * i, Width: 200, Height: 50},
			Confidence: 0.9,
		}
	}
	return out
}

func directiveFor(ds []Directive, id int) (Directive, bool) {
	for _, d := range ds {
		if d.ElementID == id {
			return d, true
		}
	}
	return Directive{}, false
}
