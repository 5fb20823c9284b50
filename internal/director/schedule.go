package director

import (
	"math"
	"sort"

	"github.com/ivlev/infographic2gif/internal/analyzer"
)

// Per-role timing policy, in seconds.
const (
	titleEnd = 2.0

	statOffset = 1.5
	statStep   = 0.3
	statLength = 2.0

	bodyOffset = 3.0
	bodyStep   = 0.5
	bodyLength = 2.0
	bodyCap    = 7.0

	ctaStart  = 8.0
	ctaLength = 2.0
)

// Schedule assigns every element a timing window from its role. Titles fire
// together, stats and bodies stagger in id order, CTAs close the animation
// and backgrounds span the whole duration. Cross-role overlap is allowed.
func Schedule(elements []analyzer.Element, totalDuration float64) map[int]TimingWindow {
	if totalDuration <= 0 || math.IsNaN(totalDuration) {
		totalDuration = defaultDuration
	}

	ordered := make([]analyzer.Element, len(elements))
	copy(ordered, elements)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	windows := make(map[int]TimingWindow, len(ordered))
	var stats, bodies int
	for _, el := range ordered {
		var w TimingWindow
		switch el.Role {
		case analyzer.RoleBackground:
			w = TimingWindow{Start: 0, End: totalDuration}
		case analyzer.RoleTitle:
			w = TimingWindow{Start: 0, End: titleEnd}
		case analyzer.RoleStat:
			start := statOffset + statStep*float64(stats)
			w = TimingWindow{Start: start, End: start + statLength}
			stats++
		case analyzer.RoleCTA:
			// CTAs run to the end of the animation, starting 2s early on short runs.
			start := math.Min(ctaStart, math.Max(totalDuration-ctaLength, 0))
			windows[el.ID] = TimingWindow{Start: start, End: totalDuration}
			continue
		default:
			start := bodyOffset + bodyStep*float64(bodies)
			w = TimingWindow{Start: start, End: math.Min(start+bodyLength, bodyCap)}
			bodies++
		}
		windows[el.ID] = clampWindow(w, totalDuration)
	}
	return windows
}

// clampWindow keeps 0 <= Start <= End <= limit.
func clampWindow(w TimingWindow, limit float64) TimingWindow {
	w.End = math.Min(w.End, limit)
	w.Start = math.Max(0, math.Min(w.Start, w.End))
	return w
}
