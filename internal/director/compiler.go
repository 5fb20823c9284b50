package director

import (
	"log/slog"
	"math"
	"sort"

	"github.com/ivlev/infographic2gif/internal/analyzer"
	applog "github.com/ivlev/infographic2gif/internal/log"
)

// CompileAuto builds one directive per element from the role preset table and
// the scheduled windows, in ascending id order. Elements without a window get
// the full duration.
func CompileAuto(elements []analyzer.Element, windows map[int]TimingWindow, totalDuration float64) []Directive {
	if totalDuration <= 0 {
		totalDuration = defaultDuration
	}
	ordered := byID(elements)

	out := make([]Directive, 0, len(ordered))
	var stats int
	for _, el := range ordered {
		w, ok := windows[el.ID]
		if !ok {
			w = TimingWindow{Start: 0, End: totalDuration}
		}
		d := newDirective(el.ID, KindForRole(el.Role), w)
		if el.Role == analyzer.RoleStat {
			d.StaggerDelay = roundMillis(statStep * float64(stats))
			stats++
		}
		out = append(out, d)
	}
	return out
}

// CompileCustom lays parsed precursors on a timeline. A running cursor starts
// at 0. Sequential precursors occupy [cursor, cursor+duration] and advance
// it. Simultaneous ones start together with the previous placed group, or at
// the cursor when they come first, and never move the cursor. A staggered
// group starts its k-th member k*stagger after the group start. Unknown ids
// and elements that already have a directive are skipped. Remaining
// non-background elements fade in 2s each from the cursor until the duration
// runs out; remaining backgrounds get a static directive.
func CompileCustom(precursors []Precursor, elements []analyzer.Element, totalDuration float64) []Directive {
	l := applog.WithOperation(applog.WithComponent("director"), "compile")
	if totalDuration <= 0 {
		totalDuration = defaultDuration
	}

	known := make(map[int]analyzer.Element, len(elements))
	for _, el := range elements {
		known[el.ID] = el
	}
	assigned := make(map[int]bool, len(elements))

	var out []Directive
	cursor := 0.0
	prevStart, hasPrev := 0.0, false
	for _, group := range groupPrecursors(precursors) {
		base, groupEnd := cursor, cursor
		lead := group[0]
		if lead.Simultaneous && hasPrev {
			base = prevStart
		}
		groupStart := base
		placed := 0
		for _, p := range group {
			if _, ok := known[p.ElementID]; !ok {
				l.Debug("dropping reference to unknown element", slog.Int("element", p.ElementID), slog.String("keyword", p.Keyword))
				continue
			}
			if assigned[p.ElementID] {
				l.Debug("element already animated, skipping", slog.Int("element", p.ElementID), slog.String("keyword", p.Keyword))
				continue
			}

			var start float64
			switch {
			case lead.Stagger > 0:
				start = base + lead.Stagger*float64(placed)
			case lead.Simultaneous:
				start = base
			default:
				start = cursor
			}
			w := clampWindow(TimingWindow{Start: start, End: start + p.Duration}, totalDuration)

			d := newDirective(p.ElementID, p.Kind, w)
			if p.Speed > 0 && p.Speed != 1 {
				d.Speed = p.Speed
			}
			if lead.Stagger > 0 {
				d.StaggerDelay = roundMillis(lead.Stagger * float64(placed))
			}
			out = append(out, d)
			assigned[p.ElementID] = true
			if placed == 0 {
				groupStart = w.Start
			}
			placed++

			groupEnd = math.Max(groupEnd, w.End)
			if !lead.Simultaneous && lead.Stagger == 0 {
				cursor = w.End
			}
		}
		if !lead.Simultaneous && lead.Stagger > 0 {
			cursor = groupEnd
		}
		if placed > 0 {
			prevStart, hasPrev = groupStart, true
		}
	}

	var statics []Directive
	for _, el := range byID(elements) {
		if assigned[el.ID] {
			continue
		}
		if el.Role == analyzer.RoleBackground {
			statics = append(statics, newDirective(el.ID, KindStatic, TimingWindow{Start: 0, End: totalDuration}))
			continue
		}
		remaining := totalDuration - cursor
		if remaining <= 0 {
			l.Debug("no time left for element", slog.Int("element", el.ID))
			continue
		}
		step := math.Min(defaultStep, remaining)
		d := newDirective(el.ID, KindFadeIn, TimingWindow{Start: cursor, End: cursor + step})
		d.AutoFilled = true
		out = append(out, d)
		cursor += step
	}
	return append(out, statics...)
}

// groupPrecursors splits precursors into runs sharing a Group number.
func groupPrecursors(ps []Precursor) [][]Precursor {
	var groups [][]Precursor
	for i, p := range ps {
		if i == 0 || p.Group != ps[i-1].Group {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], p)
	}
	return groups
}

func byID(elements []analyzer.Element) []analyzer.Element {
	out := make([]analyzer.Element, len(elements))
	copy(out, elements)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func roundMillis(v float64) float64 {
	return math.Round(v*1000) / 1000
}
